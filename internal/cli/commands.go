package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/marketplace/internal/domain"
)

func addClientFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("server", "", "Marketplace URL (default: http://localhost:9091 or $MARKETPLACE_SERVER)")
	cmd.PersistentFlags().String("api-key", "", "API key sent as X-API-Key (default: $MARKETPLACE_API_KEY)")
	cmd.PersistentFlags().Duration("timeout", 30*time.Second, "HTTP timeout (default: $MARKETPLACE_TIMEOUT)")
}

// newAgentsCommand groups agent registry subcommands.
func newAgentsCommand(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Register, discover and invoke agents",
	}
	addClientFlags(cmd)

	cmd.AddCommand(
		newAgentsRegisterCommand(opts),
		newAgentsListCommand(opts),
		newAgentsGetCommand(opts),
		newAgentsUpdateCommand(opts),
		newAgentsDeleteCommand(opts),
		newAgentsExecuteCommand(opts),
	)
	return cmd
}

func newAgentsRegisterCommand(opts *clientOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "register -f agent.json",
		Short: "Register an agent from a JSON descriptor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := readSpec(file)
			if err != nil {
				return err
			}
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			resp, err := client.RegisterAgent(cmd.Context(), spec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Agent registered with ID: %s\n", resp.AgentID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Agent descriptor JSON file, - for stdin (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newAgentsListCommand(opts *clientOptions) *cobra.Command {
	var (
		filter     domain.AgentFilter
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List agents matching the given filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			resp, err := client.ListAgents(cmd.Context(), filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, resp)
			}
			fmt.Fprintf(out, "Agents found: %d\n", resp.Count)
			for _, a := range resp.Agents {
				fmt.Fprintf(out, "- %s (ID: %s)\n", a.Name, a.ID)
				fmt.Fprintf(out, "  Description: %s\n", a.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&filter.Capabilities, "capability", nil, "Match agents exposing any of these capabilities")
	cmd.Flags().StringSliceVar(&filter.Tags, "tag", nil, "Match agents carrying any of these tags")
	cmd.Flags().StringVar(&filter.Author, "author", "", "Exact author")
	cmd.Flags().StringVar(&filter.PricingModel, "pricing-model", "", "Exact pricing model")
	cmd.Flags().StringVar(&filter.Query, "query", "", "Case-insensitive text search")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print raw JSON response")
	return cmd
}

func newAgentsGetCommand(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <agent-id>",
		Short: "Show an agent descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			agent, err := client.GetAgent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), agent)
		},
	}
}

func newAgentsUpdateCommand(opts *clientOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "update <agent-id> -f agent.json",
		Short: "Overwrite an agent descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := readSpec(file)
			if err != nil {
				return err
			}
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			resp, err := client.UpdateAgent(cmd.Context(), args[0], spec)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Agent descriptor JSON file, - for stdin (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newAgentsDeleteCommand(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <agent-id>",
		Short: "Delete an agent (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			resp, err := client.DeleteAgent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}

func newAgentsExecuteCommand(opts *clientOptions) *cobra.Command {
	var input, params, credentials string
	cmd := &cobra.Command{
		Use:   "execute <agent-id> --input JSON",
		Short: "Invoke an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.ExecuteRequest{AgentID: args[0]}
			if err := parseDocument("input", input, &req.InputData); err != nil {
				return err
			}
			if err := parseDocument("params", params, &req.ExecutionParameters); err != nil {
				return err
			}
			if err := parseDocument("credentials", credentials, &req.AuthCredentials); err != nil {
				return err
			}

			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			record, err := client.ExecuteAgent(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Agent executed successfully!")
			return printJSON(cmd.OutOrStdout(), record)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Input data as a JSON object (required)")
	cmd.Flags().StringVar(&params, "params", "", "Execution parameters as a JSON object")
	cmd.Flags().StringVar(&credentials, "credentials", "", "Credentials forwarded to the agent as a JSON object")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// newExecutionsCommand groups execution history subcommands.
func newExecutionsCommand(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "executions",
		Short: "Inspect execution history",
	}
	addClientFlags(cmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "list <agent-id>",
		Short: "List executions of an agent visible to the caller",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			resp, err := client.ListExecutions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <agent-id> <execution-id>",
		Short: "Show one execution record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			record, err := client.GetExecution(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), record)
		},
	})
	return cmd
}

func newManifestCommand(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Show the marketplace manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			m, err := client.Manifest(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), m)
		},
	}
	addClientFlags(cmd)
	return cmd
}

func readSpec(path string) (domain.AgentSpec, error) {
	var spec domain.AgentSpec

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return spec, fmt.Errorf("read descriptor: %w", err)
	}
	if err := json.Unmarshal(data, &spec); err != nil {
		return spec, fmt.Errorf("parse descriptor: %w", err)
	}
	return spec, nil
}

func parseDocument(name, raw string, out *domain.Document) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("--%s must be a JSON object: %w", name, err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
