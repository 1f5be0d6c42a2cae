package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var pruneKeep int

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Inspect and prune stored brain snapshots",
}

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		snaps, err := db.ListSnapshots(cmd.Context())
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Println("No snapshots stored.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tQUADS\tTOKENS\tNAMES")
		for _, snap := range snaps {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
				snap.ID, snap.CreatedAt.Local().Format(time.RFC3339),
				snap.Quads, snap.Tokens, snap.PeopleNames)
		}
		return w.Flush()
	},
}

var snapshotsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the most recent snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		deleted, err := db.PruneSnapshots(cmd.Context(), pruneKeep)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d snapshots, kept the %d most recent.\n", deleted, pruneKeep)
		return nil
	},
}

func init() {
	snapshotsPruneCmd.Flags().IntVarP(&pruneKeep, "keep", "k", 3, "number of snapshots to keep")
	snapshotsCmd.AddCommand(snapshotsListCmd, snapshotsPruneCmd)
}
