package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/loykin/mdmrepo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listCmd = &cobra.Command{
	Use:   "list <kind>",
	Short: "List the items of a kind (catalogs, manifests, pkgsinfo, ...)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(viper.GetViper())
		if err != nil {
			return err
		}
		items, err := repo.ItemList(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}
		for _, it := range items {
			if _, err := fmt.Fprintln(out, it); err != nil {
				return err
			}
		}
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <identifier>",
	Short: "Fetch an item's bytes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(viper.GetViper())
		if err != nil {
			return err
		}
		data, err := repo.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if dest, _ := cmd.Flags().GetString("output"); dest != "" {
			return os.WriteFile(filepath.Clean(dest), data, 0o600)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var putCmd = &cobra.Command{
	Use:   "put <identifier> [file|-]",
	Short: "Store bytes under an identifier, read from a file or stdin",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			content []byte
			err     error
		)
		if len(args) == 1 || args[1] == "-" {
			content, err = io.ReadAll(cmd.InOrStdin())
		} else {
			content, err = os.ReadFile(filepath.Clean(args[1]))
		}
		if err != nil {
			return err
		}
		repo, err := openRepo(viper.GetViper())
		if err != nil {
			return err
		}
		return repo.Put(cmd.Context(), args[0], content)
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <identifier> <local-path>",
	Short: "Upload a local file, using a pre-signed URL for pkgs/",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(viper.GetViper())
		if err != nil {
			return err
		}
		return repo.PutFromLocalFile(cmd.Context(), args[0], args[1])
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <identifier>",
	Short: "Delete an item (not supported by the remote repository)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(viper.GetViper())
		if err != nil {
			return err
		}
		return repo.Delete(cmd.Context(), args[0])
	},
}

var makecatalogsCmd = &cobra.Command{
	Use:   "makecatalogs",
	Short: "Rebuild catalogs (performed server-side; no-op)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, err := openRepo(viper.GetViper())
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")
		skip, _ := cmd.Flags().GetBool("skip-pkg-check")
		errs, err := repo.MakeCatalogs(cmd.Context(), mdmrepo.CatalogOptions{Force: force, SkipPkgCheck: skip})
		if err != nil {
			return err
		}
		for _, e := range errs {
			if _, err := fmt.Fprintln(cmd.ErrOrStderr(), e); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	listCmd.Flags().Bool("json", false, "print the list as JSON")
	getCmd.Flags().StringP("output", "o", "", "write the item to a file instead of stdout")
	makecatalogsCmd.Flags().Bool("force", false, "accepted for compatibility")
	makecatalogsCmd.Flags().Bool("skip-pkg-check", false, "accepted for compatibility")
}
