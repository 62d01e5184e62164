package infra

import (
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscognito"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type AuthStackProps struct {
	awscdk.StackProps
	Settings *Settings
	Database *DatabaseStack
}

type AuthStack struct {
	Stack    awscdk.Stack
	UserPool awscognito.UserPool
	Client   awscognito.UserPoolClient
	Domain   awscognito.UserPoolDomain
}

// NewAuthStack creates the user pool with its hosted UI, a public client for
// the authorization code flow with PKCE, the admin group and the
// post-confirmation trigger that records new users.
func NewAuthStack(scope constructs.Construct, id string, props *AuthStackProps) *AuthStack {
	stack := awscdk.NewStack(scope, &id, &props.StackProps)
	settings := props.Settings

	postConfirmation := newGoFunction(stack, "PostConfirmationFunction", "src/cmd/postconfirmation", settings.FunctionMemory, map[string]*string{
		"RDS_DB_NAME":              jsii.String(settings.DatabaseName),
		"RDS_SECRET_ARN_PARAMETER": jsii.String(SecretArnParameterName),
	})
	grantDatabaseAccess(postConfirmation, props.Database)

	pool := awscognito.NewUserPool(stack, jsii.String("UserPool"), &awscognito.UserPoolProps{
		UserPoolName:  jsii.String(settings.SystemName + "-userpool"),
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
		SignInAliases: &awscognito.SignInAliases{Email: jsii.Bool(true)},
		AutoVerify:    &awscognito.AutoVerifiedAttrs{Email: jsii.Bool(true)},
		StandardAttributes: &awscognito.StandardAttributes{
			Email: &awscognito.StandardAttribute{Required: jsii.Bool(true), Mutable: jsii.Bool(true)},
		},
		SelfSignUpEnabled: jsii.Bool(true),
		LambdaTriggers: &awscognito.UserPoolTriggers{
			PostConfirmation: postConfirmation,
		},
	})

	domain := pool.AddDomain(jsii.String("HostedUI"), &awscognito.UserPoolDomainOptions{
		CognitoDomain: &awscognito.CognitoDomainOptions{
			DomainPrefix: jsii.String(strings.ReplaceAll(settings.SystemName, ".", "-")),
		},
	})

	client := pool.AddClient(jsii.String("PublicClient"), &awscognito.UserPoolClientOptions{
		UserPoolClientName: jsii.String(settings.SystemName + "-public-client"),
		GenerateSecret:     jsii.Bool(false),
		OAuth: &awscognito.OAuthSettings{
			Flows: &awscognito.OAuthFlows{AuthorizationCodeGrant: jsii.Bool(true)},
			Scopes: &[]awscognito.OAuthScope{
				awscognito.OAuthScope_OPENID(),
				awscognito.OAuthScope_EMAIL(),
			},
			CallbackUrls: jsii.Strings(settings.CallbackURLs...),
			LogoutUrls:   jsii.Strings(settings.LogoutURLs...),
		},
	})

	awscognito.NewCfnUserPoolGroup(stack, jsii.String("AdministratorsGroup"), &awscognito.CfnUserPoolGroupProps{
		UserPoolId:  pool.UserPoolId(),
		GroupName:   jsii.String(settings.AdminGroup),
		Description: jsii.String("Users allowed on /v1/admin"),
	})

	awscdk.NewCfnOutput(stack, jsii.String("CognitoDomain"), &awscdk.CfnOutputProps{
		Value: domain.BaseUrl(nil),
	})
	awscdk.NewCfnOutput(stack, jsii.String("CognitoClientId"), &awscdk.CfnOutputProps{
		Value: client.UserPoolClientId(),
	})
	awscdk.NewCfnOutput(stack, jsii.String("UserPoolId"), &awscdk.CfnOutputProps{
		Value: pool.UserPoolId(),
	})

	return &AuthStack{Stack: stack, UserPool: pool, Client: client, Domain: domain}
}
