package formats

import "fmt"

// Report flattens the decoded GIF into a Report. Lists are only present when
// they have at least one entry.
func (g *GIF) Report() *Report {
	r := NewReport()
	r.Set("Signature", g.Signature)
	r.Set("Version", g.Version)
	r.Set("Width", g.Screen.Width)
	r.Set("Height", g.Screen.Height)
	r.Set("Global Color Table Flag", g.Screen.GlobalColorTable)
	r.Set("Color Resolution", g.Screen.ColorResolution)
	r.Set("Sort Flag", g.Screen.Sorted)
	r.Set("Size of Global Color Table", g.Screen.GlobalColorTableSize)
	r.Set("Background Color Index", g.Screen.BackgroundIndex)
	if ratio, ok := g.Screen.AspectRatio(); ok {
		r.Set("Aspect Ratio", ratio)
	} else {
		r.Set("Aspect Ratio", "unspecified")
	}

	for _, img := range g.Images {
		r.Append("Images", imageReport(img))
	}
	for _, ext := range g.Extensions {
		switch e := ext.(type) {
		case GraphicControl:
			r.Append("Graphic Control Extensions", graphicControlReport(e))
		case Comment:
			r.Append("Comment Extensions", e.Text)
		case Application:
			r.Append("App Extensions", applicationReport(e))
		case PlainText:
			r.Append("Plain Text Extensions", e.Text)
		case UnknownExtension:
			u := NewReport()
			u.Set("label", fmt.Sprintf("0x%02X", e.ID))
			u.Set("skipped bytes", e.Skipped)
			u.Set("kind", string(e.Kind))
			r.Append("Unknown Extensions", u)
		}
	}

	r.Set("State", string(g.State))
	setWarnings(r, g.Warnings)
	return r
}

func imageReport(img Image) *Report {
	r := NewReport()
	if img.FromControl {
		r.Set("delay", img.Control.DelayCentiseconds)
		r.Set("transparent_index", img.Control.TransparentIndex)
		return r
	}
	r.Set("left", img.Left)
	r.Set("top", img.Top)
	r.Set("width", img.Width)
	r.Set("height", img.Height)
	r.Set("interlaced", img.Interlaced)
	if img.LocalColorTable {
		r.Set("local color table", img.LocalColorTableSize)
	}
	if gc := img.Control; gc != nil {
		r.Set("delay", gc.DelayCentiseconds)
		r.Set("transparent_index", gc.TransparentIndex)
		r.Set("disposal", gc.DisposalMethod)
	}
	return r
}

func graphicControlReport(gc GraphicControl) *Report {
	r := NewReport()
	r.Set("delay", gc.DelayCentiseconds)
	r.Set("transparent_index", gc.TransparentIndex)
	r.Set("transparency", gc.HasTransparency)
	r.Set("disposal", gc.DisposalMethod)
	r.Set("user input", gc.UserInput)
	return r
}

func applicationReport(a Application) *Report {
	r := NewReport()
	r.Set("application", a.Identifier)
	r.Set("data length", len(a.Payload))
	if loops, ok := a.LoopCount(); ok {
		r.Set("loop count", loops)
	}
	r.Set("kind", string(a.Kind))
	if a.ICC != nil {
		r.Set("ICC Profile", iccReport(a.ICC))
	}
	return r
}
