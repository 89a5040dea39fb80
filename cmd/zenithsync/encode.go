package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"zenith-sync/internal/convert"
	"zenith-sync/internal/zenith"
)

var encodeCmd = &cobra.Command{
	Use:   "encode ACTION CONTROLLER TOPIC",
	Short: "Build a subscribe or unsubscribe frame",
	Long: `Encode prints the frame that subscribes to (sub) or unsubscribes from (unsub)
a topic. Query topics such as QueryWatchlists produce a publish request for sub.

Example:
  zenithsync encode sub Trading 'Orders!A1[Demo]' --tid 7`,
	Args: cobra.ExactArgs(3),
	RunE: runEncode,
}

var encodeTransactionID uint64

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().Uint64Var(&encodeTransactionID, "tid", 1, "transaction id")
}

func runEncode(cmd *cobra.Command, args []string) error {
	def, err := convert.DefinitionForTopic(zenith.Controller(args[1]), args[2])
	if err != nil {
		return err
	}

	var msg zenith.Message
	switch strings.ToLower(args[0]) {
	case "sub":
		msg, err = convert.CreateRequestMessage(def, encodeTransactionID)
	case "unsub":
		if def.Publish() {
			return fmt.Errorf("%s is a request and cannot be unsubscribed", def.Description())
		}
		msg, err = convert.CreateSubUnsubMessage(def, zenith.ActionUnsub, encodeTransactionID)
	default:
		return fmt.Errorf("unknown action %q (want sub or unsub)", args[0])
	}
	if err != nil {
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
