package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"regi/searcher"

	"github.com/spf13/cobra"
)

var errLimit = errors.New("limit reached")

func (a *app) examplesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "examples",
		Short: "Inspect stored training examples",
	}

	count := &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored examples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(a.cfg.Storage)
			if err != nil {
				return err
			}
			defer store.Close()
			n, err := store.Count()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, n)
			return nil
		},
	}

	var limit int
	dump := &cobra.Command{
		Use:   "dump",
		Short: "Print stored examples as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(a.cfg.Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			enc := json.NewEncoder(a.out)
			n := 0
			err = store.ForEach(func(episode string, ex searcher.Example) error {
				if limit > 0 && n >= limit {
					return errLimit
				}
				n++
				return enc.Encode(struct {
					Episode string `json:"episode"`
					searcher.Example
				}{episode, ex})
			})
			if errors.Is(err, errLimit) {
				return nil
			}
			return err
		},
	}
	dump.Flags().IntVar(&limit, "limit", 0, "stop after this many examples, 0 prints all")

	cmd.AddCommand(count, dump)
	return cmd
}
