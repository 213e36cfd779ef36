package report

import (
	"fmt"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/nguyentantai21042004/slide-flow/pkg/durfmt"
)

const (
	fontName = "Times New Roman"
	fontSize = 13
)

// WriteRunSheet renders the report as a printable docx run sheet: one line
// per slide in final order, then what was left out and why.
func (r *Report) WriteRunSheet(outputPath string) error {
	r.Finalize()

	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(doc.AddParagraph(""), r.Project+" run sheet", true, headingSize(1))
	addField(doc.AddParagraph(""), "Run", r.RunID)
	addField(doc.AddParagraph(""), "Command", r.Command)
	addField(doc.AddParagraph(""), "Status", r.Status)
	if r.Error != "" {
		addField(doc.AddParagraph(""), "Error", r.Error)
	}
	addField(doc.AddParagraph(""), "Started", r.StartedAt.Format(time.RFC3339))
	if !r.FinishedAt.IsZero() {
		addField(doc.AddParagraph(""), "Took", durfmt.FormatElapsed(r.FinishedAt.Sub(r.StartedAt)))
	}

	if r.Final != nil {
		addStyledRun(doc.AddParagraph(""), "Final video", true, headingSize(2))
		addField(doc.AddParagraph(""), "File", r.Final.Path)
		addField(doc.AddParagraph(""), "Clips", fmt.Sprintf("%d", r.Final.Clips))
		addField(doc.AddParagraph(""), "Length", durfmt.Format(r.Final.FinalSeconds))
		addField(doc.AddParagraph(""), "Encode time", durfmt.Format(r.Final.EncodeSeconds))
	}

	if len(r.Clips) > 0 {
		addStyledRun(doc.AddParagraph(""), "Slides", true, headingSize(2))
		var total float64
		for i, c := range r.Clips {
			total += c.DurationSeconds
			line := fmt.Sprintf("%d. ID %s, %s, at %s", i+1, c.ID, durfmt.Format(c.DurationSeconds), durfmt.Format(total-c.DurationSeconds))
			if c.Reused {
				line += " (reused)"
			}
			addPlain(doc.AddParagraph(""), line)
		}
	} else if len(r.Pairs) > 0 {
		addStyledRun(doc.AddParagraph(""), "Pairs", true, headingSize(2))
		for i, p := range r.Pairs {
			addPlain(doc.AddParagraph(""), fmt.Sprintf("%d. ID %s: %s & %s", i+1, p.ID, p.Image.Name, p.Audio.Name))
		}
	}

	if len(r.Narrations) > 0 {
		addStyledRun(doc.AddParagraph(""), "Narration", true, headingSize(2))
		for _, n := range r.Narrations {
			addPlain(doc.AddParagraph(""), fmt.Sprintf("• %s: %d words, %s", n.Output, n.Words, durfmt.Format(n.DurationSeconds)))
		}
	}

	if r.Summary.Unmatched > 0 || len(r.Collisions) > 0 {
		addStyledRun(doc.AddParagraph(""), "Not paired", true, headingSize(2))
		for _, a := range r.Unmatched.Images {
			addPlain(doc.AddParagraph(""), "• image without audio: "+a.Name)
		}
		for _, a := range r.Unmatched.Audio {
			addPlain(doc.AddParagraph(""), "• audio without image: "+a.Name)
		}
		for _, c := range r.Collisions {
			addPlain(doc.AddParagraph(""), fmt.Sprintf("• %s id %s claimed by %d files", c.Kind, c.ID, len(c.Files)))
		}
	}

	if len(r.Failures) > 0 || len(r.Dropped) > 0 {
		addStyledRun(doc.AddParagraph(""), "Failures", true, headingSize(2))
		for _, f := range r.Failures {
			p := doc.AddParagraph("")
			p.AddText(fmt.Sprintf("• %s (%s): ", f.Path, f.Stage)).Font(fontName).Size(fontSize).Color("000000").Bold(true)
			p.AddText(f.Error).Font(fontName).Size(fontSize).Color("000000")
		}
		for _, d := range r.Dropped {
			p := doc.AddParagraph("")
			p.AddText("• dropped " + d.Path + ": ").Font(fontName).Size(fontSize).Color("000000").Bold(true)
			p.AddText(d.Error).Font(fontName).Size(fontSize).Color("000000")
		}
	}

	return doc.SaveTo(outputPath)
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 15
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func addField(p *docx.Paragraph, label, value string) {
	p.AddText(label + ": ").Font(fontName).Size(fontSize).Color("000000").Bold(true)
	p.AddText(value).Font(fontName).Size(fontSize).Color("000000")
}

func addPlain(p *docx.Paragraph, text string) {
	p.AddText(text).Font(fontName).Size(fontSize).Color("000000")
}
