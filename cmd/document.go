package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/emrgen/docrepo/internal/model"
	"github.com/emrgen/docrepo/internal/service"
)

func init() {
	rootCmd.AddCommand(createDocCmd())
	rootCmd.AddCommand(getDocCmd())
	rootCmd.AddCommand(updateDocCmd())
	rootCmd.AddCommand(listDocCmd())
	rootCmd.AddCommand(versionDocCmd())
	rootCmd.AddCommand(listVersionsCmd())
	rootCmd.AddCommand(deleteDocCmd())
	rootCmd.AddCommand(restoreDocCmd())
	rootCmd.AddCommand(archiveDocCmd())
	rootCmd.AddCommand(unarchiveDocCmd())
	rootCmd.AddCommand(eraseDocCmd())
	rootCmd.AddCommand(dedupCmd())
	rootCmd.AddCommand(linkCmd())
	rootCmd.AddCommand(reindexCmd())
}

func checkMissingFlags(cmd *cobra.Command, required []string) bool {
	missing := false
	for _, name := range required {
		if !cmd.Flags().Changed(name) {
			fmt.Printf("missing required flag: --%s\n", name)
			missing = true
		}
	}
	return missing
}

func parseID(name, value string) (uuid.UUID, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		fmt.Printf("invalid %s: %s\n", name, value)
		return uuid.Nil, false
	}
	return id, true
}

func printDoc(doc *model.Document) {
	current := ""
	if doc.IsCurrentVersion {
		current = " (current)"
	}
	state := doc.State()
	fmt.Printf("%s  v%d%s  [%s]  %s\n", doc.ID, doc.Version, current, state, doc.Title)
}

func createDocCmd() *cobra.Command {
	var tenantID string
	var typeID string
	var title string
	var file string
	var createdBy string
	var hash string

	required := []string{"tenant-id", "type-id", "title", "file"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "create a document",
		Example: "docrepo create -t <tenant-id> -y <type-id> -T <title> -f <file>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			f, err := os.Open(file)
			if err != nil {
				logrus.Error(err)
				return
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				logrus.Error(err)
				return
			}

			docs, cleanup := newService()
			defer cleanup()

			doc, err := docs.CreateDocument(context.Background(), &service.CreateDocumentInput{
				TenantID:         tenantID,
				DocumentTypeID:   typeID,
				Title:            title,
				Content:          f,
				ContentSize:      info.Size(),
				ContentHash:      hash,
				OriginalFileName: filepath.Base(file),
				CreatedBy:        createdBy,
			})
			if err != nil {
				logrus.Error(err)
				return
			}

			printDoc(doc)
		},
	}

	command.Flags().StringVarP(&tenantID, "tenant-id", "t", "", "tenant id")
	command.Flags().StringVarP(&typeID, "type-id", "y", "", "document type id")
	command.Flags().StringVarP(&title, "title", "T", "", "document title")
	command.Flags().StringVarP(&file, "file", "f", "", "content file")
	command.Flags().StringVarP(&createdBy, "user-id", "u", "cli", "creating user id")
	command.Flags().StringVarP(&hash, "hash", "H", "", "content hash")

	return command
}

func getDocCmd() *cobra.Command {
	var docID string

	command := &cobra.Command{
		Use:     "get",
		Short:   "get a document",
		Example: "docrepo get -d <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"doc-id"}) {
				return
			}

			id, ok := parseID("doc id", docID)
			if !ok {
				return
			}

			docs, cleanup := newService()
			defer cleanup()

			doc, err := docs.GetDocument(context.Background(), id)
			if err != nil {
				logrus.Error(err)
				return
			}

			printDoc(doc)
			if doc.ContentHash != "" {
				fmt.Printf("hash: %s\n", doc.ContentHash)
			}
			if doc.LastIndexedAt != nil {
				fmt.Printf("indexed: %s\n", doc.LastIndexedAt.Format(time.RFC3339))
			}
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id")

	return command
}

func updateDocCmd() *cobra.Command {
	var docID string
	var title string
	var description string
	var updatedBy string

	command := &cobra.Command{
		Use:     "update",
		Short:   "update a document in place",
		Example: "docrepo update -d <doc-id> -T <title>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"doc-id"}) {
				return
			}

			docs, cleanup := newService()
			defer cleanup()

			doc, err := docs.UpdateDocument(context.Background(), &service.UpdateDocumentInput{
				DocumentID:  docID,
				Title:       title,
				Description: description,
				UpdatedBy:   updatedBy,
			})
			if err != nil {
				logrus.Error(err)
				return
			}

			printDoc(doc)
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id")
	command.Flags().StringVarP(&title, "title", "T", "", "new title")
	command.Flags().StringVarP(&description, "description", "D", "", "new description")
	command.Flags().StringVarP(&updatedBy, "user-id", "u", "cli", "updating user id")

	return command
}

func listDocCmd() *cobra.Command {
	var tenantID string
	var includeDeleted bool

	command := &cobra.Command{
		Use:     "list",
		Short:   "list the documents of a tenant",
		Example: "docrepo list -t <tenant-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"tenant-id"}) {
				return
			}

			tid, ok := parseID("tenant id", tenantID)
			if !ok {
				return
			}

			docs, cleanup := newService()
			defer cleanup()

			list, total, err := docs.ListDocuments(context.Background(), tid, includeDeleted)
			if err != nil {
				logrus.Error(err)
				return
			}

			for _, doc := range list {
				printDoc(doc)
			}
			fmt.Printf("total: %d\n", total)
		},
	}

	command.Flags().StringVarP(&tenantID, "tenant-id", "t", "", "tenant id")
	command.Flags().BoolVar(&includeDeleted, "deleted", false, "include soft-deleted documents")

	return command
}

func versionDocCmd() *cobra.Command {
	var docID string
	var file string
	var title string
	var createdBy string
	var hash string

	required := []string{"doc-id", "file"}

	command := &cobra.Command{
		Use:     "version",
		Short:   "create a new version of a document",
		Example: "docrepo version -d <doc-id> -f <file>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			f, err := os.Open(file)
			if err != nil {
				logrus.Error(err)
				return
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				logrus.Error(err)
				return
			}

			docs, cleanup := newService()
			defer cleanup()

			doc, err := docs.CreateVersion(context.Background(), &service.CreateVersionInput{
				LineageID:        docID,
				Title:            title,
				Content:          f,
				ContentSize:      info.Size(),
				ContentHash:      hash,
				OriginalFileName: filepath.Base(file),
				CreatedBy:        createdBy,
			})
			if err != nil {
				logrus.Error(err)
				return
			}

			printDoc(doc)
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "lineage root id or any version id")
	command.Flags().StringVarP(&file, "file", "f", "", "content file")
	command.Flags().StringVarP(&title, "title", "T", "", "title, inherits the current one when empty")
	command.Flags().StringVarP(&createdBy, "user-id", "u", "cli", "creating user id")
	command.Flags().StringVarP(&hash, "hash", "H", "", "content hash")

	return command
}

func listVersionsCmd() *cobra.Command {
	var docID string

	command := &cobra.Command{
		Use:     "versions",
		Short:   "list the versions of a document",
		Example: "docrepo versions -d <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"doc-id"}) {
				return
			}

			id, ok := parseID("doc id", docID)
			if !ok {
				return
			}

			docs, cleanup := newService()
			defer cleanup()

			list, err := docs.ListVersions(context.Background(), id)
			if err != nil {
				logrus.Error(err)
				return
			}

			for _, doc := range list {
				printDoc(doc)
			}
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "lineage root id")

	return command
}

func deleteDocCmd() *cobra.Command {
	var docID string
	var deletedBy string
	var reason string

	command := &cobra.Command{
		Use:     "delete",
		Short:   "soft delete a document",
		Example: "docrepo delete -d <doc-id> -u <user-id> -r <reason>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"doc-id"}) {
				return
			}

			id, ok := parseID("doc id", docID)
			if !ok {
				return
			}

			docs, cleanup := newService()
			defer cleanup()

			err := docs.SoftDelete(context.Background(), id, deletedBy, reason)
			if err != nil {
				logrus.Error(err)
				return
			}

			fmt.Printf("deleted %s\n", docID)
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id")
	command.Flags().StringVarP(&deletedBy, "user-id", "u", "cli", "deleting user id")
	command.Flags().StringVarP(&reason, "reason", "r", "", "deletion reason")

	return command
}

func restoreDocCmd() *cobra.Command {
	var docID string

	command := &cobra.Command{
		Use:     "restore",
		Short:   "restore a soft deleted document",
		Example: "docrepo restore -d <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"doc-id"}) {
				return
			}

			id, ok := parseID("doc id", docID)
			if !ok {
				return
			}

			docs, cleanup := newService()
			defer cleanup()

			err := docs.Restore(context.Background(), id)
			if err != nil {
				logrus.Error(err)
				return
			}

			fmt.Printf("restored %s\n", docID)
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id")

	return command
}

func archiveDocCmd() *cobra.Command {
	var docID string

	command := &cobra.Command{
		Use:     "archive",
		Short:   "archive a document",
		Example: "docrepo archive -d <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"doc-id"}) {
				return
			}

			id, ok := parseID("doc id", docID)
			if !ok {
				return
			}

			docs, cleanup := newService()
			defer cleanup()

			err := docs.Archive(context.Background(), id)
			if err != nil {
				logrus.Error(err)
				return
			}

			fmt.Printf("archived %s\n", docID)
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id")

	return command
}

func unarchiveDocCmd() *cobra.Command {
	var docID string

	command := &cobra.Command{
		Use:     "unarchive",
		Short:   "unarchive a document",
		Example: "docrepo unarchive -d <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"doc-id"}) {
				return
			}

			id, ok := parseID("doc id", docID)
			if !ok {
				return
			}

			docs, cleanup := newService()
			defer cleanup()

			err := docs.Unarchive(context.Background(), id)
			if err != nil {
				logrus.Error(err)
				return
			}

			fmt.Printf("unarchived %s\n", docID)
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id")

	return command
}

func eraseDocCmd() *cobra.Command {
	var docID string

	command := &cobra.Command{
		Use:     "erase",
		Short:   "permanently delete a document and its blob",
		Example: "docrepo erase -d <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"doc-id"}) {
				return
			}

			id, ok := parseID("doc id", docID)
			if !ok {
				return
			}

			docs, cleanup := newService()
			defer cleanup()

			err := docs.PermanentDelete(context.Background(), id)
			if err != nil {
				logrus.Error(err)
				return
			}

			fmt.Printf("erased %s\n", docID)
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id")

	return command
}

func dedupCmd() *cobra.Command {
	var tenantID string
	var hash string

	required := []string{"tenant-id", "hash"}

	command := &cobra.Command{
		Use:     "dedup",
		Short:   "find documents with the same content hash",
		Example: "docrepo dedup -t <tenant-id> -H <hash>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			tid, ok := parseID("tenant id", tenantID)
			if !ok {
				return
			}

			docs, cleanup := newService()
			defer cleanup()

			list, err := docs.FindDuplicates(context.Background(), hash, tid)
			if err != nil {
				logrus.Error(err)
				return
			}

			for _, doc := range list {
				printDoc(doc)
			}
			fmt.Printf("duplicates: %d\n", len(list))
		},
	}

	command.Flags().StringVarP(&tenantID, "tenant-id", "t", "", "tenant id")
	command.Flags().StringVarP(&hash, "hash", "H", "", "content hash")

	return command
}

func linkCmd() *cobra.Command {
	var docID string
	var ttl time.Duration

	command := &cobra.Command{
		Use:     "link",
		Short:   "issue a temporary access link",
		Example: "docrepo link -d <doc-id> --ttl 1h",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"doc-id"}) {
				return
			}

			id, ok := parseID("doc id", docID)
			if !ok {
				return
			}

			docs, cleanup := newService()
			defer cleanup()

			uri, err := docs.IssueTemporaryAccessLink(context.Background(), id, ttl)
			if err != nil {
				logrus.Error(err)
				return
			}

			fmt.Println(uri)
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id")
	command.Flags().DurationVar(&ttl, "ttl", 0, "requested link lifetime, capped at 24h")

	return command
}

func reindexCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "reindex",
		Short:   "run one reconciliation pass over stale documents",
		Example: "docrepo reindex",
		Run: func(cmd *cobra.Command, args []string) {
			docs, cleanup := newService()
			defer cleanup()

			report, err := docs.ReindexPending(context.Background())
			if err != nil {
				logrus.Error(err)
				return
			}

			fmt.Printf("pending: %d, indexed: %d, failed: %d\n", report.Pending, report.Indexed, len(report.Errors))
		},
	}

	return command
}
