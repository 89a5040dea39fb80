package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"zenith-sync/internal/convert"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/zenith"
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Parse Zenith frames read from stdin",
	Long: `Decode reads a stream of JSON frames from stdin, resolves each topic to its
data definition and prints the data messages the codec produces.

Example:
  echo '{"Controller":"Zenith","Topic":"Feeds","Action":"Sub","Data":[]}' | zenithsync decode`,
	Args: cobra.NoArgs,
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

// decodedMessage is the printed form of one data message.
type decodedMessage struct {
	Frame   int
	Type    string
	Message domain.DataMessage
}

func runDecode(cmd *cobra.Command, args []string) error {
	stderr := cmd.ErrOrStderr()
	codec := convert.New(convert.WarnFunc(func(code domain.ErrorCode, value string) {
		fmt.Fprintf(stderr, "warning: degraded %q (code=%s)\n", value, code)
	}))

	dec := json.NewDecoder(cmd.InOrStdin())
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	for frame := 1; ; frame++ {
		var msg zenith.Message
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("frame %d: %w", frame, domain.NewDataError(domain.CodeInvalidJSON, err.Error()))
		}

		def, err := convert.DefinitionForTopic(msg.Controller, msg.Topic)
		if err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		messages, err := codec.ParseMessage(msg, def)
		if err != nil {
			return fmt.Errorf("frame %d (%s): %w", frame, def.Description(), err)
		}
		for _, m := range messages {
			out := decodedMessage{
				Frame:   frame,
				Type:    strings.TrimPrefix(fmt.Sprintf("%T", m), "domain."),
				Message: m,
			}
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("write frame %d: %w", frame, err)
			}
		}
	}
}
