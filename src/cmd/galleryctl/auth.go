package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gallery/src/client"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const loginTimeout = 5 * time.Minute

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in through the hosted UI and store the tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			flow, err := pkceFlow()
			if err != nil {
				return err
			}
			store, err := sessionStore()
			if err != nil {
				return err
			}

			listener, err := client.NewCallbackListener(viper.GetString("redirect-url"))
			if err != nil {
				return err
			}
			authURL, pending, err := flow.Begin()
			if err != nil {
				listener.Close()
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Open this URL in your browser to sign in:\n\n  %s\n\n", authURL)

			ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
			defer cancel()
			query, err := listener.Wait(ctx)
			if err != nil {
				return fmt.Errorf("no login callback received: %w", err)
			}

			session, err := flow.Complete(ctx, pending, query)
			if err != nil {
				return err
			}
			if err := store.Save(session); err != nil {
				return err
			}

			id, err := session.Identity()
			if err != nil {
				return err
			}
			log.WithField("sub", id.Subject).Debug("session stored")
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", firstNonEmpty(id.Email, id.Name, id.Subject))
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored tokens and print the provider logout URL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := sessionStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Local session cleared.")

			if flow, err := pkceFlow(); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "To end the hosted UI session open:\n\n  %s\n", flow.LogoutURL(viper.GetString("logout-url")))
			}
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show who the stored ID token belongs to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := sessionStore()
			if err != nil {
				return err
			}
			session, err := store.Load()
			if err != nil {
				return err
			}
			id, err := session.Identity()
			if err != nil {
				return err
			}

			out := map[string]any{"identity": id, "expired": session.Expired(time.Now())}
			if remote {
				api, err := apiClient()
				if err != nil {
					return err
				}
				profile, err := api.Profile(cmd.Context())
				if err != nil {
					return err
				}
				out["profile"] = profile
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "also call the user service profile endpoint")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
