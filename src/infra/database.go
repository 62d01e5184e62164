package infra

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsrds"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssecretsmanager"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsssm"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// SecretArnParameterName must match RDS_SECRET_ARN_PARAMETER's default.
const SecretArnParameterName = "/rds/secret-arn"

type DatabaseStackProps struct {
	awscdk.StackProps
	DatabaseName string
	Username     string
}

type DatabaseStack struct {
	Stack              awscdk.Stack
	Secret             awssecretsmanager.ISecret
	SecretArnParameter awsssm.StringParameter
}

// NewDatabaseStack creates a small publicly reachable Postgres instance in a
// NAT-less VPC and publishes its secret ARN under SecretArnParameterName.
func NewDatabaseStack(scope constructs.Construct, id string, props *DatabaseStackProps) *DatabaseStack {
	stack := awscdk.NewStack(scope, &id, &props.StackProps)

	vpc := awsec2.NewVpc(stack, jsii.String("DatabaseVpc"), &awsec2.VpcProps{
		MaxAzs:      jsii.Number(2),
		NatGateways: jsii.Number(0),
		SubnetConfiguration: &[]*awsec2.SubnetConfiguration{
			{Name: jsii.String("Public"), SubnetType: awsec2.SubnetType_PUBLIC},
		},
	})

	securityGroup := awsec2.NewSecurityGroup(stack, jsii.String("DatabaseSecurityGroup"), &awsec2.SecurityGroupProps{
		Vpc:              vpc,
		AllowAllOutbound: jsii.Bool(true),
		Description:      jsii.String("Postgres access for the gallery services"),
	})
	// Lambdas run outside the VPC.
	securityGroup.AddIngressRule(awsec2.Peer_AnyIpv4(), awsec2.Port_Tcp(jsii.Number(5432)), jsii.String("Postgres"), nil)

	engine := awsrds.DatabaseInstanceEngine_Postgres(&awsrds.PostgresInstanceEngineProps{
		Version: awsrds.PostgresEngineVersion_VER_16_3(),
	})

	instance := awsrds.NewDatabaseInstance(stack, jsii.String("Database"), &awsrds.DatabaseInstanceProps{
		Engine:              engine,
		Vpc:                 vpc,
		VpcSubnets:          &awsec2.SubnetSelection{SubnetType: awsec2.SubnetType_PUBLIC},
		InstanceType:        awsec2.InstanceType_Of(awsec2.InstanceClass_BURSTABLE4_GRAVITON, awsec2.InstanceSize_MICRO),
		AllocatedStorage:    jsii.Number(20),
		MaxAllocatedStorage: jsii.Number(20),
		StorageType:         awsrds.StorageType_GP2,
		DatabaseName:        jsii.String(props.DatabaseName),
		Credentials: awsrds.Credentials_FromGeneratedSecret(jsii.String(props.Username), &awsrds.CredentialsBaseOptions{
			SecretName:        jsii.String(*stack.StackName() + "/rds-credentials"),
			ExcludeCharacters: jsii.String(" %+~`#$&*()|[]{}:;<>?!'/@\"\\"),
		}),
		PubliclyAccessible:     jsii.Bool(true),
		MultiAz:                jsii.Bool(false),
		BackupRetention:        awscdk.Duration_Days(jsii.Number(0)),
		DeleteAutomatedBackups: jsii.Bool(true),
		SecurityGroups:         &[]awsec2.ISecurityGroup{securityGroup},
		RemovalPolicy:          awscdk.RemovalPolicy_DESTROY,
	})

	secret := instance.Secret()
	parameter := awsssm.NewStringParameter(stack, jsii.String("DatabaseSecretArn"), &awsssm.StringParameterProps{
		ParameterName: jsii.String(SecretArnParameterName),
		StringValue:   secret.SecretArn(),
		Description:   jsii.String("ARN of the database credentials secret"),
	})

	awscdk.NewCfnOutput(stack, jsii.String("DatabaseEndpoint"), &awscdk.CfnOutputProps{
		Value: instance.DbInstanceEndpointAddress(),
	})
	awscdk.NewCfnOutput(stack, jsii.String("DatabaseSecretArnOutput"), &awscdk.CfnOutputProps{
		Value: secret.SecretArn(),
	})

	return &DatabaseStack{Stack: stack, Secret: secret, SecretArnParameter: parameter}
}
