// Command jpiview is an interactive terminal viewer for a decoded JPI
// EDM file: a scrollable flight list with a status bar, navigated with
// the arrow keys and quit with Ctrl-C.
package main

import (
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/jroimartin/gocui"
	. "github.com/logrusorgru/aurora"
	"github.com/spf13/pflag"

	"jpiedm/edm"
)

// viewState holds the opened parser and the list's current selection,
// playing the role the teacher's Context/Sky pair plays for the
// aircraft list: one mutable place the render callback reads from.
type viewState struct {
	parser   *edm.Parser
	flights  []*edm.Flight
	selected int
}

func newViewState(parser *edm.Parser) *viewState {
	flights := parser.Flights()
	sort.Slice(flights, func(i, j int) bool { return flights[i].Number < flights[j].Number })
	return &viewState{parser: parser, flights: flights}
}

func (vs *viewState) current() *edm.Flight {
	if vs.selected < 0 || vs.selected >= len(vs.flights) {
		return nil
	}
	return vs.flights[vs.selected]
}

func (vs *viewState) move(delta int) {
	vs.selected += delta
	if vs.selected < 0 {
		vs.selected = 0
	}
	if vs.selected >= len(vs.flights) {
		vs.selected = len(vs.flights) - 1
	}
}

func (vs *viewState) render(g *gocui.Gui) error {
	status, err := g.View("status")
	if err != nil {
		return err
	}
	status.Clear()
	fmt.Fprintf(status, " TAIL %s   MODEL %s   FLIGHTS %02d\n",
		Green(vs.parser.TailNumber()), Green(vs.parser.ModelString()), len(vs.flights))

	list, err := g.View("list")
	if err != nil {
		return err
	}
	list.Clear()
	fmt.Fprintln(list, " FLIGHT   SAMPLES   DURATION   GPS    STATUS")
	fmt.Fprintln(list, " =====================================================")
	for i, f := range vs.flights {
		marker := "  "
		if i == vs.selected {
			marker = Sprintf(Yellow(">")).String() + " "
		}
		statusWord := "ok"
		if !f.Valid() {
			statusWord = "invalid"
		}
		fmt.Fprintln(list, Sprintf("%s%6d   %7d   %6.1fh   %-5v  %s",
			marker, f.Number, len(f.Samples), f.DurationHours(), f.HasGPS(), statusWord))
	}

	detail, err := g.View("detail")
	if err != nil {
		return err
	}
	detail.Clear()
	if f := vs.current(); f != nil {
		fmt.Fprintf(detail, " flight %d, %d sample(s)\n", f.Number, len(f.Samples))
		for _, w := range f.ParseWarnings() {
			fmt.Fprintln(detail, " "+Sprintf(Red("warning: "+w)).String())
		}
		if n := len(f.Samples); n > 0 {
			fmt.Fprintf(detail, " first=%s last=%s\n",
				f.Samples[0].Timestamp.Format("2006-01-02 15:04:05"),
				f.Samples[n-1].Timestamp.Format("2006-01-02 15:04:05"))
		}
	} else {
		fmt.Fprintln(detail, " (no flight selected)")
	}
	return nil
}

func main() {
	pflag.Parse()
	if pflag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: jpiview <edm-file>")
		os.Exit(2)
	}

	buf, err := os.ReadFile(pflag.Arg(0))
	if err != nil {
		log.Fatalf("reading file: %v", err)
	}
	parser, err := edm.Open(buf, edm.TempOriginal)
	if err != nil {
		log.Fatalf("opening EDM file: %v", err)
	}

	vs := newViewState(parser)

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		log.Panicln(err)
	}
	defer g.Close()

	g.SetManagerFunc(func(g *gocui.Gui) error { return layout(g, vs) })

	keybindings := []struct {
		key gocui.Key
		fn  func(g *gocui.Gui, v *gocui.View) error
	}{
		{gocui.KeyCtrlC, quit},
		{gocui.KeyArrowDown, func(g *gocui.Gui, v *gocui.View) error { vs.move(1); return vs.render(g) }},
		{gocui.KeyArrowUp, func(g *gocui.Gui, v *gocui.View) error { vs.move(-1); return vs.render(g) }},
	}
	for _, kb := range keybindings {
		if err := g.SetKeybinding("", kb.key, gocui.ModNone, kb.fn); err != nil {
			log.Panicln(err)
		}
	}

	if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.Panicln(err)
	}
}

func layout(g *gocui.Gui, vs *viewState) error {
	maxX, maxY := g.Size()

	if v, err := g.SetView("status", 0, 0, maxX-1, 2); err == nil || err == gocui.ErrUnknownView {
		if v != nil {
			v.Title = " STATUS "
		}
	}
	listHeight := maxY - 10
	if listHeight < 3 {
		listHeight = 3
	}
	if v, err := g.SetView("list", 0, 3, maxX-1, 3+listHeight); err == nil || err == gocui.ErrUnknownView {
		if v != nil {
			v.Title = " FLIGHTS (up/down to select, ctrl-c to quit) "
		}
	}
	if v, err := g.SetView("detail", 0, 4+listHeight, maxX-1, maxY-1); err == nil || err == gocui.ErrUnknownView {
		if v != nil {
			v.Title = " DETAIL "
		}
	}
	return vs.render(g)
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
