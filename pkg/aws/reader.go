package aws

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/efs"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"

	"github.com/cloudsketch/cloudsketch/pkg/construct"
)

type (
	// Per-service client contracts. Paginated operations reuse the SDK's
	// generated APIClient interfaces so the paginators accept fakes in tests.
	EC2API interface {
		ec2.DescribeVpcsAPIClient
		ec2.DescribeSubnetsAPIClient
		ec2.DescribeInstancesAPIClient
		ec2.DescribeInternetGatewaysAPIClient
		ec2.DescribeNatGatewaysAPIClient
		ec2.DescribeSecurityGroupsAPIClient
		ec2.DescribeVpcEndpointsAPIClient
	}

	ELBAPI interface {
		elbv2.DescribeLoadBalancersAPIClient
		elbv2.DescribeTargetGroupsAPIClient
		DescribeTargetHealth(ctx context.Context, params *elbv2.DescribeTargetHealthInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeTargetHealthOutput, error)
	}

	LambdaAPI interface {
		lambda.ListFunctionsAPIClient
		lambda.ListEventSourceMappingsAPIClient
	}

	RDSAPI interface {
		rds.DescribeDBInstancesAPIClient
	}

	S3API interface {
		ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	}

	SQSAPI interface {
		sqs.ListQueuesAPIClient
	}

	SNSAPI interface {
		sns.ListTopicsAPIClient
	}

	DynamoAPI interface {
		dynamodb.ListTablesAPIClient
	}

	ECSAPI interface {
		ecs.ListClustersAPIClient
		ecs.ListServicesAPIClient
		DescribeClusters(ctx context.Context, params *ecs.DescribeClustersInput, optFns ...func(*ecs.Options)) (*ecs.DescribeClustersOutput, error)
		DescribeServices(ctx context.Context, params *ecs.DescribeServicesInput, optFns ...func(*ecs.Options)) (*ecs.DescribeServicesOutput, error)
	}

	EFSAPI interface {
		efs.DescribeFileSystemsAPIClient
	}

	// Reader scans one account region into a resource store. Each service
	// scan is independent: a denied or failing API only costs its own
	// resources, never the whole inventory.
	Reader struct {
		region string

		ec2    EC2API
		elb    ELBAPI
		lambda LambdaAPI
		rds    RDSAPI
		s3     S3API
		sqs    SQSAPI
		sns    SNSAPI
		dynamo DynamoAPI
		ecs    ECSAPI
		efs    EFSAPI

		log *zap.SugaredLogger
	}
)

func NewReader(cfg aws.Config) *Reader {
	return &Reader{
		region: cfg.Region,
		ec2:    ec2.NewFromConfig(cfg),
		elb:    elbv2.NewFromConfig(cfg),
		lambda: lambda.NewFromConfig(cfg),
		rds:    rds.NewFromConfig(cfg),
		s3:     s3.NewFromConfig(cfg),
		sqs:    sqs.NewFromConfig(cfg),
		sns:    sns.NewFromConfig(cfg),
		dynamo: dynamodb.NewFromConfig(cfg),
		ecs:    ecs.NewFromConfig(cfg),
		efs:    efs.NewFromConfig(cfg),
		log:    zap.S().Named("aws"),
	}
}

// LoadConfig resolves credentials and region the standard SDK way
// (environment, shared config, instance metadata).
func LoadConfig(ctx context.Context, region, profile string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

func (r *Reader) Region() string {
	return r.region
}

// Read walks every supported service and returns the store plus the derived
// relationship set. The returned error joins per-service failures; a non-nil
// error with a non-empty store means a partial inventory, which is still
// renderable.
func (r *Reader) Read(ctx context.Context) (*construct.Store, *construct.RelationshipSet, error) {
	store := construct.NewStore()
	extra := construct.NewRelationshipSet()

	scans := []struct {
		name string
		run  func(context.Context, *construct.Store, *construct.RelationshipSet) error
	}{
		{"ec2", r.readNetwork},
		{"elbv2", r.readLoadBalancers},
		{"lambda", r.readFunctions},
		{"rds", r.readDatabases},
		{"ecs", r.readContainers},
		{"efs", r.readFileSystems},
		{"s3", r.readBuckets},
		{"sqs", r.readQueues},
		{"sns", r.readTopics},
		{"dynamodb", r.readTables},
	}

	var errs error
	for _, scan := range scans {
		if err := scan.run(ctx, store, extra); err != nil {
			r.log.Warnf("%s scan failed: %v", scan.name, err)
			errs = errors.Join(errs, err)
		}
	}
	r.log.Infof("discovered %d resources in %s", store.Len(), r.region)

	rels := construct.InferRelationships(store)
	for _, rel := range extra.All() {
		rels.Add(rel.Source, rel.Target, rel.Kind, rel.Label)
	}
	return store, rels, errs
}

// nameTag pulls the Name tag with a fallback, usually the resource id.
func nameTag(tags []ec2types.Tag, fallback string) string {
	for _, t := range tags {
		if aws.ToString(t.Key) == "Name" {
			if v := aws.ToString(t.Value); v != "" {
				return v
			}
		}
	}
	return fallback
}

// arnResource extracts the trailing resource name from an ARN.
func arnResource(arn string) string {
	if i := strings.LastIndexAny(arn, ":/"); i >= 0 {
		return arn[i+1:]
	}
	return arn
}
