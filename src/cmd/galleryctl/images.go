package main

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSubmitCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "submit <file>",
		Short: "Request an upload URL for an image and upload the file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := apiClient()
			if err != nil {
				return err
			}
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()
			info, err := file.Stat()
			if err != nil {
				return err
			}
			contentType, err := detectContentType(file, args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = filepath.Base(args[0])
			}

			submitted, err := api.Submit(cmd.Context(), name)
			if err != nil {
				return err
			}
			log.WithField("key", submitted.UUIDFilename).Debug("upload url issued")

			if err := api.Upload(cmd.Context(), submitted.PresignedURL, file, info.Size(), contentType); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s as image %d\n%s\n", name, submitted.ImageID, submitted.CloudfrontURL)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name, at most 40 characters (default: file name)")
	return cmd
}

// detectContentType sniffs the first bytes and falls back to the extension.
// The file offset is rewound.
func detectContentType(file *os.File, path string) (string, error) {
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	contentType := http.DetectContentType(head[:n])
	if contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
			contentType = byExt
		}
	}
	return contentType, nil
}

func newGalleryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "List the newest images of all users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := apiClient()
			if err != nil {
				return err
			}
			gallery, err := api.Gallery(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tBY\tCREATED\tURL")
			for _, image := range gallery.Images {
				by := image.Username
				if image.Nickname != nil {
					by = *image.Nickname
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", image.ID, image.ImageName, by, image.CreatedAt.Format("2006-01-02 15:04"), image.CloudfrontURL)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d image(s)\n", gallery.Count)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "number of images, 1 to 1000")
	return cmd
}
