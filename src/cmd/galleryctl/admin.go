package main

import (
	"fmt"
	"os"

	app "gallery/src/app"
	cfg "gallery/src/configuration"
	"gallery/src/repository"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"
)

func newCorsCmd() *cobra.Command {
	var (
		bucket  string
		origins []string
		regions []string
	)
	cmd := &cobra.Command{
		Use:   "cors",
		Short: "Apply the browser upload CORS rule to the images bucket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if bucket == "" {
				return fmt.Errorf("--bucket is required")
			}
			awsCfg, err := awsconfig.LoadDefaultConfig(cmd.Context())
			if err != nil {
				return fmt.Errorf("can not load aws config: %w", err)
			}
			clientFor := func(region string) app.BucketCORSAPI {
				return s3.NewFromConfig(awsCfg, func(o *s3.Options) { o.Region = region })
			}

			tryRegions := append([]string{os.Getenv("AWS_REGION"), awsCfg.Region}, regions...)
			region, err := app.ApplyBucketCORS(cmd.Context(), clientFor, bucket, tryRegions, app.UploadCORSRule(origins), log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "CORS configuration of %s updated in %s\n", bucket, region)
			return nil
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", os.Getenv("S3_BUCKET_NAME"), "images bucket name")
	cmd.Flags().StringSliceVar(&origins, "origin", []string{"http://localhost:3000", "http://localhost:5173"}, "allowed browser origin (repeatable)")
	cmd.Flags().StringSliceVar(&regions, "region", app.DefaultCORSRegions, "regions to try after AWS_REGION")
	return cmd
}

func newDBCmd() *cobra.Command {
	db := &cobra.Command{
		Use:   "db",
		Short: "Database administration",
	}
	db.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users and images tables",
		Long:  "Uses the same RDS_* settings as the services: RDS_DSN, or RDS_DB_NAME with the secret behind RDS_SECRET_ARN_PARAMETER.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := cfg.ReadProperties()
			if err != nil {
				return err
			}
			secrets, err := repository.NewAWSSecretSource(cmd.Context(), config.Database.SecretArnParameter)
			if err != nil {
				return err
			}
			dialer := repository.NewPostgresDialer(config.Database, secrets, log)
			if err := repository.Migrate(cmd.Context(), dialer); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	})
	return db
}
