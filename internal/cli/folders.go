package cli

import (
	"context"
	"log"

	"binder/internal/app"
	"binder/internal/domain/models"
	"binder/internal/service/folders"

	"github.com/spf13/cobra"
)

// FoldersCmd returns the folders parent command
func FoldersCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Manage folders",
	}

	cmd.AddCommand(folderListCmd(open))
	cmd.AddCommand(folderCreateCmd(open))
	cmd.AddCommand(folderRenameCmd(open))
	cmd.AddCommand(folderDeleteCmd(open))
	cmd.AddCommand(folderContentsCmd(open))
	cmd.AddCommand(folderAssignCmd(open))

	return cmd
}

func requireFlag(cmd *cobra.Command, name string) {
	if err := cmd.MarkFlagRequired(name); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}
}

func addKindFlag(cmd *cobra.Command) {
	cmd.Flags().String("kind", "", "Record kind: form or view (required)")
	requireFlag(cmd, "kind")
}

func addFolderFlag(cmd *cobra.Command) {
	cmd.Flags().String("id", "", "Folder ID (required)")
	requireFlag(cmd, "id")
}

func toRecordIDs(raw []int64) []models.RecordID {
	ids := make([]models.RecordID, len(raw))
	for i, id := range raw {
		ids[i] = models.RecordID(id)
	}
	return ids
}

// runFolderCommand parses --kind, builds the gateway command and runs it
func runFolderCommand(cmd *cobra.Command, open Opener, build func(kind models.Kind) folders.Command, print func(f *OutputFormatter, res *folders.Result) error) error {
	formatter := formatterFor(cmd)
	kind, err := parseKind(cmd, formatter)
	if err != nil {
		return err
	}

	return withApp(cmd, open, formatter, func(ctx context.Context, a *app.App) error {
		res, err := execute(ctx, a, formatter, build(kind))
		if err != nil {
			return err
		}
		return print(formatter, res)
	})
}

func folderListCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List folders of a kind",
		Long: `List every folder of a kind with its member count.

Examples:
  binderctl folders list --kind=form
  binderctl folders list --kind=view --json
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFolderCommand(cmd, open,
				func(kind models.Kind) folders.Command {
					return folders.ListFolders{Envelope: folders.Envelope{Kind: kind}}
				},
				func(f *OutputFormatter, res *folders.Result) error {
					summaries, _ := res.Data.([]models.FolderSummary)
					if f.JSON {
						return f.JSONSuccess(summaries)
					}
					if f.Quiet {
						for _, s := range summaries {
							f.Line("%s", s.ID)
						}
						return nil
					}
					if len(summaries) == 0 {
						f.Line("No folders found")
						return nil
					}
					for i, s := range summaries {
						f.Line("  %d. %s (%d) (ID: %s)", i+1, s.Name, s.RecordCount, s.ID)
					}
					return nil
				})
		},
	}
	addKindFlag(cmd)
	addOutputFlags(cmd)
	return cmd
}

func folderCreateCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a folder",
		Long: `Create a folder. Names need not be unique.

Examples:
  binderctl folders create --kind=form --name="Lead capture"
  FOLDER_ID=$(binderctl folders create --kind=view --name=Public --quiet)
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			return runFolderCommand(cmd, open,
				func(kind models.Kind) folders.Command {
					return folders.CreateFolder{Envelope: folders.Envelope{Kind: kind}, Name: name}
				},
				printFolder)
		},
	}
	addKindFlag(cmd)
	cmd.Flags().String("name", "", "Folder name (required)")
	requireFlag(cmd, "name")
	addOutputFlags(cmd)
	return cmd
}

func folderRenameCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Rename a folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			name, _ := cmd.Flags().GetString("name")
			return runFolderCommand(cmd, open,
				func(kind models.Kind) folders.Command {
					return folders.RenameFolder{Envelope: folders.Envelope{Kind: kind}, FolderID: id, Name: name}
				},
				printFolder)
		},
	}
	addKindFlag(cmd)
	addFolderFlag(cmd)
	cmd.Flags().String("name", "", "New folder name (required)")
	requireFlag(cmd, "name")
	addOutputFlags(cmd)
	return cmd
}

func folderDeleteCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an empty folder",
		Long: `Delete a folder. Folders that still have members are refused;
unassign or move the records first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			return runFolderCommand(cmd, open,
				func(kind models.Kind) folders.Command {
					return folders.DeleteFolder{Envelope: folders.Envelope{Kind: kind}, FolderID: id}
				},
				printMessage)
		},
	}
	addKindFlag(cmd)
	addFolderFlag(cmd)
	addOutputFlags(cmd)
	return cmd
}

func folderContentsCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contents",
		Short: "List the records in a folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			return runFolderCommand(cmd, open,
				func(kind models.Kind) folders.Command {
					return folders.FolderContents{Envelope: folders.Envelope{Kind: kind}, FolderID: id}
				},
				func(f *OutputFormatter, res *folders.Result) error {
					contents, _ := res.Data.(*models.FolderContents)
					if f.JSON {
						return f.JSONSuccess(contents)
					}
					if f.Quiet {
						for _, r := range contents.Records {
							f.Line("%d", r.ID)
						}
						return nil
					}
					f.Line("Folder '%s':", contents.Folder.Name)
					if len(contents.Records) == 0 {
						f.Line("  (empty)")
					}
					for i, r := range contents.Records {
						f.Line("  %d. %s (ID: %d)", i+1, r.Title, r.ID)
					}
					return nil
				})
		},
	}
	addKindFlag(cmd)
	addFolderFlag(cmd)
	addOutputFlags(cmd)
	return cmd
}

func folderAssignCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Move records into a folder",
		Long: `Move records into a folder. Each record leaves whatever folder it was
in before. Processing stops at the first failure.

Examples:
  binderctl folders assign --kind=form --id=<folder-id> --records=3,4,9
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			raw, _ := cmd.Flags().GetInt64Slice("records")
			return runFolderCommand(cmd, open,
				func(kind models.Kind) folders.Command {
					return folders.AssignToFolder{Envelope: folders.Envelope{Kind: kind}, FolderID: id, RecordIDs: toRecordIDs(raw)}
				},
				func(f *OutputFormatter, res *folders.Result) error {
					if f.JSON {
						return f.JSONSuccess(res.Outcomes)
					}
					if !f.Quiet {
						f.Line("✓ %s", res.Message)
					}
					return nil
				})
		},
	}
	addKindFlag(cmd)
	addFolderFlag(cmd)
	cmd.Flags().Int64Slice("records", nil, "Record IDs to assign (required)")
	requireFlag(cmd, "records")
	addOutputFlags(cmd)
	return cmd
}

func printFolder(f *OutputFormatter, res *folders.Result) error {
	folder, _ := res.Data.(*models.Folder)
	if f.Quiet {
		f.Line("%s", folder.ID)
		return nil
	}
	if f.JSON {
		return f.JSONSuccess(folder)
	}
	f.Line("✓ %s (ID: %s)", res.Message, folder.ID)
	return nil
}

func printMessage(f *OutputFormatter, res *folders.Result) error {
	if f.JSON {
		return f.JSONSuccess(nil)
	}
	if !f.Quiet {
		f.Line("✓ %s", res.Message)
	}
	return nil
}
