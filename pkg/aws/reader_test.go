package aws

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/efs"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cloudsketch/cloudsketch/pkg/construct"
)

type fakeEC2 struct {
	vpcs      []ec2types.Vpc
	subnets   []ec2types.Subnet
	instances []ec2types.Instance
}

func (f fakeEC2) DescribeVpcs(ctx context.Context, in *ec2.DescribeVpcsInput, _ ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	return &ec2.DescribeVpcsOutput{Vpcs: f.vpcs}, nil
}

func (f fakeEC2) DescribeSubnets(ctx context.Context, in *ec2.DescribeSubnetsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	return &ec2.DescribeSubnetsOutput{Subnets: f.subnets}, nil
}

func (f fakeEC2) DescribeInstances(ctx context.Context, in *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	return &ec2.DescribeInstancesOutput{
		Reservations: []ec2types.Reservation{{Instances: f.instances}},
	}, nil
}

func (f fakeEC2) DescribeInternetGateways(ctx context.Context, in *ec2.DescribeInternetGatewaysInput, _ ...func(*ec2.Options)) (*ec2.DescribeInternetGatewaysOutput, error) {
	return &ec2.DescribeInternetGatewaysOutput{}, nil
}

func (f fakeEC2) DescribeNatGateways(ctx context.Context, in *ec2.DescribeNatGatewaysInput, _ ...func(*ec2.Options)) (*ec2.DescribeNatGatewaysOutput, error) {
	return &ec2.DescribeNatGatewaysOutput{}, nil
}

func (f fakeEC2) DescribeSecurityGroups(ctx context.Context, in *ec2.DescribeSecurityGroupsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	return &ec2.DescribeSecurityGroupsOutput{}, nil
}

func (f fakeEC2) DescribeVpcEndpoints(ctx context.Context, in *ec2.DescribeVpcEndpointsInput, _ ...func(*ec2.Options)) (*ec2.DescribeVpcEndpointsOutput, error) {
	return &ec2.DescribeVpcEndpointsOutput{}, nil
}

type fakeELB struct {
	lbs []elbv2types.LoadBalancer
	tgs []elbv2types.TargetGroup
}

func (f fakeELB) DescribeLoadBalancers(ctx context.Context, in *elbv2.DescribeLoadBalancersInput, _ ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error) {
	return &elbv2.DescribeLoadBalancersOutput{LoadBalancers: f.lbs}, nil
}

func (f fakeELB) DescribeTargetGroups(ctx context.Context, in *elbv2.DescribeTargetGroupsInput, _ ...func(*elbv2.Options)) (*elbv2.DescribeTargetGroupsOutput, error) {
	return &elbv2.DescribeTargetGroupsOutput{TargetGroups: f.tgs}, nil
}

func (f fakeELB) DescribeTargetHealth(ctx context.Context, in *elbv2.DescribeTargetHealthInput, _ ...func(*elbv2.Options)) (*elbv2.DescribeTargetHealthOutput, error) {
	return &elbv2.DescribeTargetHealthOutput{
		TargetHealthDescriptions: []elbv2types.TargetHealthDescription{
			{Target: &elbv2types.TargetDescription{Id: aws.String("i-1")}},
		},
	}, nil
}

type fakeLambda struct{}

func (fakeLambda) ListFunctions(ctx context.Context, in *lambda.ListFunctionsInput, _ ...func(*lambda.Options)) (*lambda.ListFunctionsOutput, error) {
	return &lambda.ListFunctionsOutput{Functions: []lambdatypes.FunctionConfiguration{
		{FunctionName: aws.String("handler"), FunctionArn: aws.String("arn:aws:lambda:us-east-1:1:function:handler"), Runtime: lambdatypes.RuntimeGo1x},
	}}, nil
}

func (fakeLambda) ListEventSourceMappings(ctx context.Context, in *lambda.ListEventSourceMappingsInput, _ ...func(*lambda.Options)) (*lambda.ListEventSourceMappingsOutput, error) {
	return &lambda.ListEventSourceMappingsOutput{EventSourceMappings: []lambdatypes.EventSourceMappingConfiguration{
		{
			FunctionArn:    aws.String("arn:aws:lambda:us-east-1:1:function:handler"),
			EventSourceArn: aws.String("arn:aws:sqs:us-east-1:1:jobs"),
		},
	}}, nil
}

type fakeRDS struct{}

func (fakeRDS) DescribeDBInstances(ctx context.Context, in *rds.DescribeDBInstancesInput, _ ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error) {
	return &rds.DescribeDBInstancesOutput{}, nil
}

type failingS3 struct{}

func (failingS3) ListBuckets(ctx context.Context, in *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	return nil, errors.New("access denied")
}

type fakeSQS struct{}

func (fakeSQS) ListQueues(ctx context.Context, in *sqs.ListQueuesInput, _ ...func(*sqs.Options)) (*sqs.ListQueuesOutput, error) {
	return &sqs.ListQueuesOutput{QueueUrls: []string{"https://sqs.us-east-1.amazonaws.com/1/jobs"}}, nil
}

type fakeSNS struct{}

func (fakeSNS) ListTopics(ctx context.Context, in *sns.ListTopicsInput, _ ...func(*sns.Options)) (*sns.ListTopicsOutput, error) {
	return &sns.ListTopicsOutput{}, nil
}

type fakeDynamo struct{}

func (fakeDynamo) ListTables(ctx context.Context, in *dynamodb.ListTablesInput, _ ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
	return &dynamodb.ListTablesOutput{}, nil
}

type fakeECS struct{}

func (fakeECS) ListClusters(ctx context.Context, in *ecs.ListClustersInput, _ ...func(*ecs.Options)) (*ecs.ListClustersOutput, error) {
	return &ecs.ListClustersOutput{}, nil
}

func (fakeECS) ListServices(ctx context.Context, in *ecs.ListServicesInput, _ ...func(*ecs.Options)) (*ecs.ListServicesOutput, error) {
	return &ecs.ListServicesOutput{}, nil
}

func (fakeECS) DescribeClusters(ctx context.Context, in *ecs.DescribeClustersInput, _ ...func(*ecs.Options)) (*ecs.DescribeClustersOutput, error) {
	return &ecs.DescribeClustersOutput{}, nil
}

func (fakeECS) DescribeServices(ctx context.Context, in *ecs.DescribeServicesInput, _ ...func(*ecs.Options)) (*ecs.DescribeServicesOutput, error) {
	return &ecs.DescribeServicesOutput{}, nil
}

type fakeEFS struct{}

func (fakeEFS) DescribeFileSystems(ctx context.Context, in *efs.DescribeFileSystemsInput, _ ...func(*efs.Options)) (*efs.DescribeFileSystemsOutput, error) {
	return &efs.DescribeFileSystemsOutput{}, nil
}

func testReader() *Reader {
	return &Reader{
		region: "us-east-1",
		ec2: fakeEC2{
			vpcs: []ec2types.Vpc{{
				VpcId:     aws.String("vpc-1"),
				CidrBlock: aws.String("10.0.0.0/16"),
				Tags:      []ec2types.Tag{{Key: aws.String("Name"), Value: aws.String("main")}},
			}},
			subnets: []ec2types.Subnet{{
				SubnetId:            aws.String("subnet-a"),
				VpcId:               aws.String("vpc-1"),
				AvailabilityZone:    aws.String("us-east-1a"),
				MapPublicIpOnLaunch: aws.Bool(true),
			}},
			instances: []ec2types.Instance{
				{
					InstanceId:     aws.String("i-1"),
					SubnetId:       aws.String("subnet-a"),
					VpcId:          aws.String("vpc-1"),
					State:          &ec2types.InstanceState{Name: ec2types.InstanceStateNameRunning},
					SecurityGroups: []ec2types.GroupIdentifier{{GroupId: aws.String("sg-1")}},
				},
				{
					InstanceId: aws.String("i-gone"),
					State:      &ec2types.InstanceState{Name: ec2types.InstanceStateNameTerminated},
				},
			},
		},
		elb: fakeELB{
			lbs: []elbv2types.LoadBalancer{{
				LoadBalancerName: aws.String("edge"),
				LoadBalancerArn:  aws.String("arn:lb:edge"),
				VpcId:            aws.String("vpc-1"),
				Type:             elbv2types.LoadBalancerTypeEnumApplication,
				AvailabilityZones: []elbv2types.AvailabilityZone{
					{SubnetId: aws.String("subnet-a")},
				},
			}},
			tgs: []elbv2types.TargetGroup{{
				TargetGroupName:  aws.String("web"),
				TargetGroupArn:   aws.String("arn:tg:web"),
				VpcId:            aws.String("vpc-1"),
				TargetType:       elbv2types.TargetTypeEnumInstance,
				Protocol:         elbv2types.ProtocolEnumHttp,
				Port:             aws.Int32(80),
				LoadBalancerArns: []string{"arn:lb:edge"},
			}},
		},
		lambda: fakeLambda{},
		rds:    fakeRDS{},
		s3:     failingS3{},
		sqs:    fakeSQS{},
		sns:    fakeSNS{},
		dynamo: fakeDynamo{},
		ecs:    fakeECS{},
		efs:    fakeEFS{},
		log:    zap.NewNop().Sugar(),
	}
}

func TestReader_Read(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	store, rels, err := testReader().Read(context.Background())

	// S3 is denied but the rest of the inventory still lands.
	require.Error(err)
	assert.Contains(err.Error(), "access denied")

	vpc, ok := store.Get(construct.Vpc, "vpc-1")
	require.True(ok)
	assert.Equal("main", vpc.Label())

	subnet, ok := store.Get(construct.Subnet, "subnet-a")
	require.True(ok)
	assert.True(subnet.Attrs.(construct.SubnetAttrs).IsPublic)

	_, ok = store.Get(construct.Instance, "i-1")
	assert.True(ok)
	_, ok = store.Get(construct.Instance, "i-gone")
	assert.False(ok, "terminated instances are dropped")

	lb, ok := store.Get(construct.LoadBalancer, "edge")
	require.True(ok)
	assert.Equal([]string{"web"}, lb.Attrs.(construct.LoadBalancerAttrs).TargetGroups)

	tg, ok := store.Get(construct.TargetGroup, "web")
	require.True(ok)
	tgAttrs := tg.Attrs.(construct.TargetGroupAttrs)
	assert.Equal(80, tgAttrs.Port)
	assert.Equal([]construct.ResourceId{construct.Id(construct.Instance, "i-1")}, tgAttrs.Targets)

	fn, ok := store.Get(construct.Function, "handler")
	require.True(ok)
	assert.Equal(
		[]construct.ResourceId{construct.Id(construct.Queue, "jobs")},
		fn.Attrs.(construct.FunctionAttrs).EventSources,
	)

	_, ok = store.Get(construct.Queue, "jobs")
	assert.True(ok)

	// Derived edges include the lb chain, the trigger, and the explicit
	// security-group membership.
	var kinds []construct.RelationshipKind
	for _, rel := range rels.All() {
		kinds = append(kinds, rel.Kind)
	}
	assert.Contains(kinds, construct.RoutesTo)
	assert.Contains(kinds, construct.Targets)
	assert.Contains(kinds, construct.Triggers)
	assert.Contains(kinds, construct.UsesSecurityGroup)
}

func TestEventSourceId(t *testing.T) {
	assert := assert.New(t)

	cases := map[string]struct {
		arn  string
		want construct.ResourceId
		ok   bool
	}{
		"sqs":      {"arn:aws:sqs:us-east-1:1:jobs", construct.Id(construct.Queue, "jobs"), true},
		"sns":      {"arn:aws:sns:us-east-1:1:alerts", construct.Id(construct.Topic, "alerts"), true},
		"dynamodb": {"arn:aws:dynamodb:us-east-1:1:table/sessions/stream/2024", construct.Id(construct.Table, "sessions"), true},
		"kinesis":  {"arn:aws:kinesis:us-east-1:1:stream/clicks", construct.ResourceId{}, false},
		"garbage":  {"not-an-arn", construct.ResourceId{}, false},
	}
	for name, tt := range cases {
		got, ok := eventSourceId(tt.arn)
		assert.Equal(tt.ok, ok, name)
		assert.Equal(tt.want, got, name)
	}
}

func TestChunk(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(chunk(nil, 10))
	assert.Equal([][]string{{"a", "b"}}, chunk([]string{"a", "b"}, 10))
	assert.Equal(
		[][]string{{"a", "b"}, {"c", "d"}, {"e"}},
		chunk([]string{"a", "b", "c", "d", "e"}, 2),
	)
}
