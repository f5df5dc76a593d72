package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/petasbytes/entropy-agent/internal/provider"
	"github.com/petasbytes/entropy-agent/internal/runner"
	"github.com/petasbytes/entropy-agent/internal/telemetry"
	"github.com/petasbytes/entropy-agent/tools"
)

const scenarioSystem = "You are an agent with two tools. Never guess arithmetic or randomness: call calculate_security_code for exact math and get_quantum_random_door whenever a truly random choice is required."

// escapeScenario needs both exact arithmetic and true randomness.
func escapeScenario(doors int) string {
	return fmt.Sprintf(`CRITICAL SITUATION:
You are trapped in a high-tech facility.

STEP 1: A blast door blocks your path. It has a keypad displaying "512 x 8".
You must calculate the correct code to open it. DO NOT guess. Use your tools.

STEP 2: Once the door opens, you face %d identical escape pods numbered 1-%d.
They are indistinguishable. You must use true quantum randomness to pick one.

Execute the plan. Describe your actions as you go.`, doors, doors)
}

// newRunner wires the provider client, both tools and telemetry from a's config.
func (a *app) newRunner() (*runner.Runner, error) {
	if a.cfg.APIKey == "" {
		return nil, errors.New("missing ANTHROPIC_API_KEY; export it before running")
	}
	res, err := a.resolver(nil)
	if err != nil {
		return nil, err
	}
	client := provider.NewAnthropicClient(provider.Settings{
		APIKey:  a.cfg.APIKey,
		BaseURL: a.cfg.BaseURL,
	})
	r := runner.New(client, tools.Registry(res, a.cfg.Doors))
	r.MaxTokens = a.cfg.MaxTokens
	r.Logger = a.log.Named("runner")
	r.Events = &telemetry.Sink{Dir: a.cfg.ArtifactsDir, Enabled: a.cfg.ObserveJSON}
	return r, nil
}

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the facility escape scenario once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.newRunner()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			r.Out = out
			r.System = scenarioSystem

			scenario := escapeScenario(a.cfg.Doors)
			fmt.Fprintln(out, "--- AGENT INITIALIZED ---")
			fmt.Fprintf(out, "\u001b[94mYou\u001b[0m: %s\n", scenario)
			fmt.Fprintln(out, strings.Repeat("-", 25))

			conv := []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(scenario))}
			_, final, err := r.Run(cmd.Context(), anthropic.Model(a.cfg.Model), conv, a.cfg.MaxSteps)
			if err != nil {
				return fmt.Errorf("scenario: %w", err)
			}
			fmt.Fprintln(out, "\n--- FINAL RESPONSE ---")
			fmt.Fprintln(out, final)
			return nil
		},
	}
}
