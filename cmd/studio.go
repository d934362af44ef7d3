package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/chainsim/internal/invoke"
	"github.com/Mohsinsiddi/chainsim/internal/lesson"
	"github.com/Mohsinsiddi/chainsim/internal/ui"
)

var playgroundLesson int

var studioCmd = &cobra.Command{
	Use:   "studio <contract>",
	Short: "Interactive TUI for calling a contract's functions",
	Long: `Open the studio for a registered contract.

Pick a function, type its arguments (each field is checked as you type) and
press enter to call it. Confirmed writes land in the gas leaderboard.

Keys:
  ↑/↓ j/k   choose a function      tab/→    edit its fields
  enter     call                    esc      back to the list
  ctrl+r    reset this function     ctrl+x   reset everything
  q         quit`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bc, err := loadContract(args[0], signWith)
		if err != nil {
			return err
		}
		return runStudio(cmd.Context(), bc)
	},
}

var playgroundCmd = &cobra.Command{
	Use:   "playground [file.sol] [constructor args...]",
	Short: "Compile, deploy and open the studio in one step",
	Long: `Compile a Solidity file (or a bundled lesson), deploy it and open the
studio on the new contract.

Examples:
  chainsim playground                 # pick a lesson
  chainsim playground --lesson 3
  chainsim playground Counter.sol 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, origin, rawArgs, err := playgroundSource(cmd, args)
		if err != nil {
			return err
		}

		res, err := compileSource(cmd.Context(), source)
		if err != nil {
			return err
		}
		art := res.Artifact

		entry, err := deployArtifact(cmd.Context(), art, rawArgs, firstNonEmpty(deployName, art.Name), origin)
		if err != nil {
			return err
		}
		bc, err := bindEntry(entry, signWith)
		if err != nil {
			return err
		}
		return runStudio(cmd.Context(), bc)
	},
}

// playgroundSource resolves the source to compile from --lesson, a file
// argument or, with neither, a lesson picker.
func playgroundSource(cmd *cobra.Command, args []string) (source, origin string, rawArgs []string, err error) {
	if cmd.Flags().Changed("lesson") {
		l, err := lesson.Get(playgroundLesson)
		if err != nil {
			return "", "", nil, err
		}
		return lessonSource(l), lessonOrigin(l), args, nil
	}
	if len(args) > 0 {
		source, err := readSource(args[0])
		if err != nil {
			return "", "", nil, err
		}
		return source, args[0], args[1:], nil
	}

	items := make([]ui.PickerItem, 0, len(lesson.All()))
	for _, l := range lesson.All() {
		items = append(items, ui.PickerItem{
			Label:  fmt.Sprintf("%d. %s", l.Number, l.Title),
			Detail: l.Description,
			Value:  strconv.Itoa(l.Number),
		})
	}
	picked, err := ui.Pick("Pick a lesson", items)
	if err != nil {
		return "", "", nil, err
	}
	l, err := lesson.Parse(picked)
	if err != nil {
		return "", "", nil, err
	}
	return lessonSource(l), lessonOrigin(l), nil, nil
}

// lessonSource also selects the lesson's main contract unless --contract
// names another.
func lessonSource(l lesson.Lesson) string {
	if contractName == "" {
		contractName = l.Contract
	}
	return l.Source()
}

func lessonOrigin(l lesson.Lesson) string {
	return "lesson:" + strconv.Itoa(l.Number)
}

func runStudio(ctx context.Context, bc *boundContract) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(bc.iface.Functions) == 0 {
		return fmt.Errorf("%s has no callable functions", bc.entry.Name)
	}

	feed := ui.NewPhaseFeed()
	sess := invoke.NewSession(bc.iface, bc.contract, invoke.WithObserver(feed.Observe))
	err := ui.RunStudio(ui.StudioConfig{
		Ctx:      ctx,
		Session:  sess,
		Feed:     feed,
		Contract: bc.entry.Name,
		Address:  bc.entry.Address,
		Network:  bc.entry.Network,
	})
	if err != nil {
		return err
	}
	printSessionSummary(sess.Ledger().Sorted())
	return nil
}

// printSessionSummary prints the gas leaderboard left after the studio closes.
func printSessionSummary(records []invoke.GasRecord) {
	if len(records) == 0 {
		return
	}
	fmt.Println(ui.StyleTitle.Render("Gas leaderboard"))
	fmt.Println(ui.Leaderboard(records).Render())
	var total uint64
	for _, r := range records {
		total += r.GasUsed
	}
	fmt.Println(ui.Meta(fmt.Sprintf("%d transaction(s), %d gas total", len(records), total)))
}

func init() {
	playgroundCmd.Flags().IntVarP(&playgroundLesson, "lesson", "l", 0, "use a bundled lesson (1-7) instead of a file")
	playgroundCmd.Flags().StringVar(&deployName, "name", "", "registry name (default: contract name)")
}
