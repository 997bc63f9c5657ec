package main

import (
	"strings"

	"codearena/internal/cli/command"

	"github.com/spf13/cobra"
)

func newProblemCmd(opts *rootOptions, registry map[string]command.Command) *cobra.Command {
	problemCmd := &cobra.Command{
		Use:   "problem",
		Short: "Generate and inspect practice problems",
	}

	var complexity string
	newCmd := &cobra.Command{
		Use:   "new <concept>",
		Short: registry["problem new"].Usage,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, registry, "problem new", command.Params{
				"concept":    args[0],
				"complexity": complexity,
			})
		},
	}
	newCmd.Flags().StringVar(&complexity, "complexity", "", "EASY, MEDIUM or HARD (random when omitted)")

	showCmd := &cobra.Command{
		Use:   "show [concept]",
		Short: registry["problem show"].Usage,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, registry, "problem show", command.Params{"concept": firstArg(args)})
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: registry["problem list"].Usage,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, registry, "problem list", command.Params{})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear [concept]",
		Short: registry["problem clear"].Usage,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, registry, "problem clear", command.Params{"concept": firstArg(args)})
		},
	}

	var bpLanguage, bpOut string
	boilerplateCmd := &cobra.Command{
		Use:   "boilerplate [concept]",
		Short: registry["problem boilerplate"].Usage,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, registry, "problem boilerplate", command.Params{
				"concept":  firstArg(args),
				"language": bpLanguage,
				"out":      bpOut,
			})
		},
	}
	boilerplateCmd.Flags().StringVarP(&bpLanguage, "language", "l", "", "java or python (session language when omitted)")
	boilerplateCmd.Flags().StringVarP(&bpOut, "out", "o", "", "Write to this file instead of stdout")

	categoriesCmd := &cobra.Command{
		Use:   "categories",
		Short: registry["problem categories"].Usage,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, registry, "problem categories", command.Params{})
		},
	}

	problemCmd.AddCommand(newCmd, showCmd, listCmd, categoriesCmd, clearCmd, boilerplateCmd)
	return problemCmd
}

func newSubmitCmd(opts *rootOptions, registry map[string]command.Command) *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "submit <concept> <file>",
		Short: registry["submit run"].Usage,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, registry, "submit run", command.Params{
				"concept":  args[0],
				"file":     args[1],
				"language": language,
			})
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "", "java or python (session language when omitted)")
	return cmd
}

func newChatCmd(opts *rootOptions, registry map[string]command.Command) *cobra.Command {
	var codeFile string
	cmd := &cobra.Command{
		Use:   "chat <concept> <message...>",
		Short: registry["chat send"].Usage,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, registry, "chat send", command.Params{
				"concept": args[0],
				"message": strings.Join(args[1:], " "),
				"file":    codeFile,
			})
		},
	}
	cmd.Flags().StringVar(&codeFile, "code", "", "File with your current code, sent as context")
	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
