package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/chainsim/internal/lesson"
	"github.com/Mohsinsiddi/chainsim/internal/ui"
)

var lessonDir string

var lessonCmd = &cobra.Command{
	Use:   "lesson",
	Short: "Browse the bundled Solidity lessons",
}

var lessonListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the lessons",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := ui.NewTable([]ui.Column{
			{Title: "#", Width: 3, Right: true},
			{Title: "Title", Width: 24},
			{Title: "Contract", Width: 16},
			{Title: "Description", Width: 56},
		})
		for _, l := range lesson.All() {
			t.AddRow(ui.Row{
				fmt.Sprintf("%d", l.Number),
				ui.Val(l.Title),
				l.Contract,
				ui.Meta(l.Description),
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Hint("Try one with: chainsim playground --lesson 1"))
		return nil
	},
}

var lessonShowCmd = &cobra.Command{
	Use:   "show <n>",
	Short: "Print a lesson's source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := lesson.Parse(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n\n", ui.StyleTitle.Render(fmt.Sprintf("Lesson %d: %s", l.Number, l.Title)), ui.Meta(l.FileName()))
		fmt.Println(ui.Meta(l.Description))
		fmt.Println()
		fmt.Println(l.Source())
		return nil
	},
}

var lessonSaveCmd = &cobra.Command{
	Use:   "save <n>",
	Short: "Write a lesson's source to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := lesson.Parse(args[0])
		if err != nil {
			return err
		}
		path, err := l.Save(lessonDir)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success("Saved " + path))
		fmt.Println(ui.Hint("Run it with: chainsim playground " + path))
		return nil
	},
}

func init() {
	lessonSaveCmd.Flags().StringVarP(&lessonDir, "dir", "d", ".", "directory to write into")
	lessonCmd.AddCommand(lessonListCmd, lessonShowCmd, lessonSaveCmd)
}
