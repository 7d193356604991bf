package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"chancellery/game"
	"chancellery/scenario"
)

type output struct {
	OK     bool                    `json:"ok" yaml:"ok"`
	Result *scenario.Result        `json:"result,omitempty" yaml:"-"`
	View   *game.View              `json:"view,omitempty" yaml:"-"`
	Error  *scenario.ScenarioError `json:"error,omitempty" yaml:"error,omitempty"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "scenario",
		Short: "Play scripted games against the rules engine",
	}
	root.AddCommand(newRunCmd(), newCheckCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		player   string
		autoplay bool
	)
	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Run a scenario file and print the final state as JSON",
		Long: `Loads a YAML or JSON scenario, plays every step against a fresh seeded game
and prints the result. With --player only that player's view is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			if autoplay {
				spec.Autoplay = true
			}
			return run(cmd.OutOrStdout(), spec, player)
		},
	}
	cmd.Flags().StringVarP(&player, "player", "p", "", "print only this player's view")
	cmd.Flags().BoolVar(&autoplay, "autoplay", false, "let NPCs finish the game after the scripted steps")
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [files...]",
		Short: "Run scenario files and report only pass/fail",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				spec, err := scenario.Load(path)
				if err == nil {
					_, err = scenario.Run(spec)
				}
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, len(args))
			}
			return nil
		},
	}
}

func run(w io.Writer, spec scenario.Spec, player string) error {
	res, err := scenario.Run(spec)
	out := output{OK: err == nil, Result: res}
	var se *scenario.ScenarioError
	if errors.As(err, &se) {
		out.Error = se
	} else if err != nil {
		return err
	}
	if res != nil && player != "" {
		v, ok := res.Views[player]
		if !ok {
			return fmt.Errorf("no player %q in scenario", player)
		}
		out.Result, out.View = nil, &v
	}

	if out.Error != nil {
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		if encErr := enc.Encode(out); encErr != nil {
			return encErr
		}
		return out.Error
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
