package client

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mwantia/mugenvault/pkg/db/models"
	"github.com/mwantia/mugenvault/pkg/library"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// libraryFile is the structured document accepted by 'library import'.
type libraryFile struct {
	Characters []library.Character `yaml:"characters"`
	Stages     []library.Stage     `yaml:"stages"`
}

func NewLibraryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage library metadata",
		Long:  "List, import and remove the character and stage metadata that smart collections are evaluated against.",
	}

	cmd.AddCommand(NewLibraryListCommand())
	cmd.AddCommand(NewLibraryImportCommand())
	cmd.AddCommand(NewLibraryRemoveCommand())

	return cmd
}

func NewLibraryListCommand() *cobra.Command {
	var kind string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List library entries",
		Long:  "List all characters and stages currently known to the metadata store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			snapshot, err := sess.store.Snapshot(cmd.Context())
			if err != nil {
				return err
			}

			switch strings.ToLower(kind) {
			case "", "all":
			case "character", "characters":
				snapshot.Stages = nil
			case "stage", "stages":
				snapshot.Characters = nil
			default:
				return fmt.Errorf("unknown kind '%s'", kind)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), snapshot)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tID\tNAME\tTAGS\tINSTALLED")
			for _, c := range snapshot.Characters {
				fmt.Fprintf(w, "character\t%s\t%s\t%s\t%s\n", c.ID, c.Name, strings.Join(c.Tags, ","), formatDate(c.InstalledAt))
			}
			for _, s := range snapshot.Stages {
				fmt.Fprintf(w, "stage\t%s\t%s\t%s\t%s\n", s.ID, s.Name, strings.Join(s.Tags, ","), formatDate(s.InstalledAt))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "only list 'character' or 'stage' entries")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as json")

	return cmd
}

func NewLibraryImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import library metadata",
		Long:  "Insert or replace characters and stages described by a yaml document with 'characters' and 'stages' lists.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			var file libraryFile
			if err := yaml.Unmarshal(data, &file); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			sess, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			for _, record := range file.Characters {
				character := models.NewCharacter(record)
				if err := sess.store.SaveCharacter(cmd.Context(), &character); err != nil {
					return err
				}
			}
			for _, record := range file.Stages {
				stage := models.NewStage(record)
				if err := sess.store.SaveStage(cmd.Context(), &stage); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d characters and %d stages\n", len(file.Characters), len(file.Stages))
			return nil
		},
	}

	return cmd
}

func NewLibraryRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <character|stage> <id>",
		Short: "Remove a library entry",
		Long:  "Removes the metadata of a single character or stage.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			switch strings.ToLower(args[0]) {
			case "character":
				err = sess.store.DeleteCharacter(cmd.Context(), args[1])
			case "stage":
				err = sess.store.DeleteStage(cmd.Context(), args[1])
			default:
				return fmt.Errorf("unknown kind '%s'", args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to remove %s '%s': %w", args[0], args[1], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s '%s'\n", args[0], args[1])
			return nil
		},
	}

	return cmd
}
