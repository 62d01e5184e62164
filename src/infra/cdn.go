package infra

import (
	app "gallery/src/app"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfrontorigins"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type ImagesCDNStackProps struct {
	awscdk.StackProps
	Settings *Settings
}

type ImagesCDNStack struct {
	Stack        awscdk.Stack
	Bucket       awss3.Bucket
	Distribution awscloudfront.Distribution
}

// NewImagesCDNStack creates the private images bucket, which browsers upload
// to with presigned PUTs, and the distribution that serves it.
func NewImagesCDNStack(scope constructs.Construct, id string, props *ImagesCDNStackProps) *ImagesCDNStack {
	stack := awscdk.NewStack(scope, &id, &props.StackProps)

	bucket := awss3.NewBucket(stack, jsii.String("ImagesBucket"), &awss3.BucketProps{
		BucketName:        optional(props.Settings.BucketName),
		Encryption:        awss3.BucketEncryption_S3_MANAGED,
		RemovalPolicy:     awscdk.RemovalPolicy_DESTROY,
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		AutoDeleteObjects: jsii.Bool(true),
		Cors:              &[]*awss3.CorsRule{uploadCorsRule(props.Settings.UploadOrigins)},
	})

	distribution := awscloudfront.NewDistribution(stack, jsii.String("ImagesDistribution"), &awscloudfront.DistributionProps{
		DefaultBehavior: &awscloudfront.BehaviorOptions{
			Origin:               awscloudfrontorigins.S3BucketOrigin_WithOriginAccessControl(bucket, nil),
			ViewerProtocolPolicy: awscloudfront.ViewerProtocolPolicy_REDIRECT_TO_HTTPS,
			CachePolicy:          awscloudfront.CachePolicy_CACHING_OPTIMIZED(),
		},
	})

	awscdk.NewCfnOutput(stack, jsii.String("ImagesBucketName"), &awscdk.CfnOutputProps{
		Value: bucket.BucketName(),
	})
	awscdk.NewCfnOutput(stack, jsii.String("ImagesDomain"), &awscdk.CfnOutputProps{
		Value: distribution.DistributionDomainName(),
	})

	return &ImagesCDNStack{Stack: stack, Bucket: bucket, Distribution: distribution}
}

// uploadCorsRule is the rule galleryctl cors applies to existing buckets.
func uploadCorsRule(origins []string) *awss3.CorsRule {
	rule := app.UploadCORSRule(origins)
	methods := make([]awss3.HttpMethods, 0, len(rule.AllowedMethods))
	for _, m := range rule.AllowedMethods {
		methods = append(methods, awss3.HttpMethods(m))
	}
	return &awss3.CorsRule{
		AllowedMethods: &methods,
		AllowedOrigins: jsii.Strings(rule.AllowedOrigins...),
		AllowedHeaders: jsii.Strings(rule.AllowedHeaders...),
		ExposedHeaders: jsii.Strings(rule.ExposeHeaders...),
		MaxAge:         jsii.Number(float64(*rule.MaxAgeSeconds)),
	}
}
