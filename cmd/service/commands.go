package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/gzizouseif24/tarot-reader/internal/adapters/http/dto"
	"github.com/gzizouseif24/tarot-reader/internal/domain"
	"github.com/gzizouseif24/tarot-reader/internal/platform/config"
)

func promptCommand() *cli.Command {
	return &cli.Command{
		Name:      "prompt",
		Usage:     "print the prompt a reading request would send, without calling the model",
		ArgsUsage: "[request.json]",
		Description: "Reads a POST /api/reading body from the named file, or from stdin\n" +
			"when no file (or \"-\") is given.",
		Action: printPrompt,
	}
}

func printPrompt(_ context.Context, cmd *cli.Command) error {
	in := cmd.Root().Reader
	if in == nil {
		in = os.Stdin
	}

	if name := cmd.Args().First(); name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return fmt.Errorf("opening request: %w", err)
		}
		defer f.Close()

		in = f
	}

	prompt, err := composeFrom(in)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, prompt)
	return err
}

// composeFrom decodes and validates a request body and renders its prompt.
func composeFrom(r io.Reader) (string, error) {
	var req dto.ReadingRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return "", fmt.Errorf("decoding request: %w", err)
	}

	if err := dto.Validate(&req); err != nil {
		return "", err
	}

	in := req.ToDomain()
	if err := in.Validate(); err != nil {
		return "", err
	}

	return domain.ComposePrompt(in.Question, in.Cards, in.ZodiacSign)
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "validate the profile and print the effective settings with the credential redacted",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if _, err := loadConfig(cmd); err != nil {
				return err
			}

			out, err := config.Dump(cmd.String("profile"))
			if err != nil {
				return err
			}

			_, err = cmd.Root().Writer.Write(out)
			return err
		},
	}
}
