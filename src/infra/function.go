package infra

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	iam "github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	lambda "github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	awslambdago "github.com/aws/aws-cdk-go/awscdklambdagoalpha/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

const functionTimeoutSeconds = 30

var bundlingOptions = &awslambdago.BundlingOptions{
	GoBuildFlags: &[]*string{jsii.String(`-ldflags "-s -w"`)},
}

// newGoFunction builds one of the cmd/ binaries as a provided.al2023 function.
func newGoFunction(scope constructs.Construct, id, entry string, memory float64, environment map[string]*string) awslambdago.GoFunction {
	return awslambdago.NewGoFunction(scope, jsii.String(id), &awslambdago.GoFunctionProps{
		Architecture: lambda.Architecture_ARM_64(),
		Runtime:      lambda.Runtime_PROVIDED_AL2023(),
		Bundling:     bundlingOptions,
		MemorySize:   jsii.Number(memory),
		Timeout:      awscdk.Duration_Seconds(jsii.Number(functionTimeoutSeconds)),
		Entry:        jsii.String(entry),
		Environment:  &environment,
	})
}

// grantDatabaseAccess lets fn follow the SSM parameter to the credentials
// secret.
func grantDatabaseAccess(fn lambda.IFunction, db *DatabaseStack) {
	db.SecretArnParameter.GrantRead(fn)
	fn.AddToRolePolicy(iam.NewPolicyStatement(&iam.PolicyStatementProps{
		Actions: &[]*string{
			jsii.String("secretsmanager:GetSecretValue"),
		},
		Resources: &[]*string{
			db.Secret.SecretArn(),
		},
	}))
}
