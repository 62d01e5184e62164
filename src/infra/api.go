package infra

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscognito"
	iam "github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type ImageAPIStackProps struct {
	awscdk.StackProps
	Settings *Settings
	Database *DatabaseStack
	Auth     *AuthStack
	Images   *ImagesCDNStack
}

type UserAPIStackProps struct {
	awscdk.StackProps
	Settings *Settings
	Auth     *AuthStack
}

var corsResponseHeaders = map[string]*string{
	"Access-Control-Allow-Origin":  jsii.String("'*'"),
	"Access-Control-Allow-Headers": jsii.String("'Content-Type,Authorization'"),
	"Access-Control-Allow-Methods": jsii.String("'GET,POST,PUT,DELETE,OPTIONS'"),
}

// NewImageAPIStack fronts cmd/imageservice with a REST API. Only /health is
// reachable without a Cognito ID token.
func NewImageAPIStack(scope constructs.Construct, id string, props *ImageAPIStackProps) awscdk.Stack {
	stack := awscdk.NewStack(scope, &id, &props.StackProps)
	settings := props.Settings

	fn := newGoFunction(stack, "ImageServiceFunction", "src/cmd/imageservice", settings.FunctionMemory, map[string]*string{
		"RDS_DB_NAME":              jsii.String(settings.DatabaseName),
		"RDS_SECRET_ARN_PARAMETER": jsii.String(SecretArnParameterName),
		"S3_BUCKET_NAME":           props.Images.Bucket.BucketName(),
		"S3_BUCKET_REGION":         props.Images.Stack.Region(),
		"CLOUDFRONT_DOMAIN":        props.Images.Distribution.DistributionDomainName(),
		"AUTH_MODE":                jsii.String("gateway"),
	})
	grantDatabaseAccess(fn, props.Database)
	fn.AddToRolePolicy(iam.NewPolicyStatement(&iam.PolicyStatementProps{
		Actions: &[]*string{
			jsii.String("s3:PutObject"),
		},
		Resources: &[]*string{
			props.Images.Bucket.ArnForObjects(jsii.String("*")),
		},
	}))

	api := newRestAPI(stack, "ImageApi", "Image Service API")
	authorizer := newAuthorizer(stack, props.Auth.UserPool)
	integration := awsapigateway.NewLambdaIntegration(fn, &awsapigateway.LambdaIntegrationOptions{Proxy: jsii.Bool(true)})
	protected := &awsapigateway.MethodOptions{
		AuthorizationType: awsapigateway.AuthorizationType_COGNITO,
		Authorizer:        authorizer,
	}

	api.Root().AddResource(jsii.String("health"), nil).
		AddMethod(jsii.String("GET"), integration, &awsapigateway.MethodOptions{AuthorizationType: awsapigateway.AuthorizationType_NONE})

	v1 := api.Root().AddResource(jsii.String("v1"), nil)
	v1.AddResource(jsii.String("submit"), nil).AddMethod(jsii.String("POST"), integration, protected)
	v1.AddResource(jsii.String("gallery"), nil).AddMethod(jsii.String("GET"), integration, protected)

	awscdk.NewCfnOutput(stack, jsii.String("ImageApiUrl"), &awscdk.CfnOutputProps{Value: api.Url()})
	return stack
}

// NewUserAPIStack fronts cmd/userservice. /health and /v1/config are public;
// the service itself checks the admin group under /v1/admin.
func NewUserAPIStack(scope constructs.Construct, id string, props *UserAPIStackProps) awscdk.Stack {
	stack := awscdk.NewStack(scope, &id, &props.StackProps)
	settings := props.Settings

	fn := newGoFunction(stack, "UserServiceFunction", "src/cmd/userservice", settings.FunctionMemory, map[string]*string{
		"AUTH_MODE":        jsii.String("gateway"),
		"AUTH_ADMIN_GROUP": jsii.String(settings.AdminGroup),
	})

	api := newRestAPI(stack, "UserApi", "User Service API")
	authorizer := newAuthorizer(stack, props.Auth.UserPool)
	integration := awsapigateway.NewLambdaIntegration(fn, &awsapigateway.LambdaIntegrationOptions{Proxy: jsii.Bool(true)})
	public := &awsapigateway.MethodOptions{AuthorizationType: awsapigateway.AuthorizationType_NONE}
	protected := &awsapigateway.MethodOptions{
		AuthorizationType: awsapigateway.AuthorizationType_COGNITO,
		Authorizer:        authorizer,
	}

	api.Root().AddResource(jsii.String("health"), nil).AddMethod(jsii.String("GET"), integration, public)

	v1 := api.Root().AddResource(jsii.String("v1"), nil)
	v1.AddResource(jsii.String("config"), nil).AddMethod(jsii.String("GET"), integration, public)
	v1.AddResource(jsii.String("profile"), nil).AddMethod(jsii.String("GET"), integration, protected)
	v1.AddResource(jsii.String("admin"), nil).AddProxy(&awsapigateway.ProxyResourceOptions{
		DefaultIntegration:   integration,
		DefaultMethodOptions: protected,
		AnyMethod:            jsii.Bool(true),
	})

	awscdk.NewCfnOutput(stack, jsii.String("UserApiUrl"), &awscdk.CfnOutputProps{Value: api.Url()})
	return stack
}

// newRestAPI creates a regional API whose preflight and authorizer failures
// both carry CORS headers, so browsers see the real 401/403.
func newRestAPI(stack awscdk.Stack, id, name string) awsapigateway.RestApi {
	api := awsapigateway.NewRestApi(stack, jsii.String(id), &awsapigateway.RestApiProps{
		RestApiName: jsii.String(name),
		EndpointConfiguration: &awsapigateway.EndpointConfiguration{
			Types: &[]awsapigateway.EndpointType{awsapigateway.EndpointType_REGIONAL},
		},
		DefaultCorsPreflightOptions: &awsapigateway.CorsOptions{
			AllowOrigins: awsapigateway.Cors_ALL_ORIGINS(),
			AllowMethods: jsii.Strings("GET", "POST", "PUT", "DELETE", "OPTIONS"),
			AllowHeaders: jsii.Strings("Content-Type", "Authorization"),
		},
	})

	api.AddGatewayResponse(jsii.String("UnauthorizedGatewayResponse"), &awsapigateway.GatewayResponseOptions{
		Type:            awsapigateway.ResponseType_UNAUTHORIZED(),
		StatusCode:      jsii.String("401"),
		ResponseHeaders: &corsResponseHeaders,
	})
	api.AddGatewayResponse(jsii.String("AccessDeniedGatewayResponse"), &awsapigateway.GatewayResponseOptions{
		Type:            awsapigateway.ResponseType_ACCESS_DENIED(),
		StatusCode:      jsii.String("403"),
		ResponseHeaders: &corsResponseHeaders,
	})
	return api
}

func newAuthorizer(stack awscdk.Stack, pool awscognito.IUserPool) awsapigateway.CognitoUserPoolsAuthorizer {
	return awsapigateway.NewCognitoUserPoolsAuthorizer(stack, jsii.String("CognitoAuthorizer"), &awsapigateway.CognitoUserPoolsAuthorizerProps{
		CognitoUserPools: &[]awscognito.IUserPool{pool},
		IdentitySource:   jsii.String("method.request.header.Authorization"),
	})
}
