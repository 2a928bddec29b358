package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// progressBar prints one static bar frame per finished batch. A nil
// progressBar prints nothing.
type progressBar struct {
	out io.Writer
	bar progress.Model
}

func newProgressBar(out io.Writer, tty bool) *progressBar {
	if !tty {
		return nil
	}
	return &progressBar{
		out: out,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (p *progressBar) step(done, total int) {
	if p == nil || total == 0 {
		return
	}
	frame := p.bar.ViewAs(float64(done) / float64(total))
	fmt.Fprintf(p.out, "%s %s\n", frame, mutedStyle.Render(fmt.Sprintf("%d/%d", done, total)))
}

func printSaved(out io.Writer, files resultFiles) {
	fmt.Fprintf(out, "%s %s\n", okStyle.Render("Saved to"), files.JSON)
	if files.Text != "" {
		fmt.Fprintf(out, "%s %s\n", okStyle.Render("Saved to"), files.Text)
	}
}
