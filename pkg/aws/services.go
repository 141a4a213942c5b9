package aws

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/efs"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/cloudsketch/cloudsketch/pkg/construct"
)

// readLoadBalancers scans balancers first, then target groups; the group
// scan back-fills each balancer's forwarding list, and target health turns
// registered targets into concrete resource ids.
func (r *Reader) readLoadBalancers(ctx context.Context, store *construct.Store, _ *construct.RelationshipSet) error {
	var errs error

	lbAttrs := make(map[string]construct.LoadBalancerAttrs)
	lbs := elbv2.NewDescribeLoadBalancersPaginator(r.elb, &elbv2.DescribeLoadBalancersInput{})
	for lbs.HasMorePages() {
		page, err := lbs.NextPage(ctx)
		if err != nil {
			errs = errors.Join(errs, err)
			break
		}
		for _, lb := range page.LoadBalancers {
			name := aws.ToString(lb.LoadBalancerName)
			attrs := construct.LoadBalancerAttrs{
				Name:    name,
				Type:    string(lb.Type),
				VpcId:   aws.ToString(lb.VpcId),
				DnsName: aws.ToString(lb.DNSName),
			}
			for _, az := range lb.AvailabilityZones {
				attrs.SubnetIds = append(attrs.SubnetIds, aws.ToString(az.SubnetId))
			}
			lbAttrs[aws.ToString(lb.LoadBalancerArn)] = attrs
			store.Put(construct.LoadBalancer, name, attrs)
		}
	}

	tgs := elbv2.NewDescribeTargetGroupsPaginator(r.elb, &elbv2.DescribeTargetGroupsInput{})
	for tgs.HasMorePages() {
		page, err := tgs.NextPage(ctx)
		if err != nil {
			errs = errors.Join(errs, err)
			break
		}
		for _, tg := range page.TargetGroups {
			name := aws.ToString(tg.TargetGroupName)
			attrs := construct.TargetGroupAttrs{
				Name:       name,
				VpcId:      aws.ToString(tg.VpcId),
				TargetType: string(tg.TargetType),
				Protocol:   string(tg.Protocol),
				Port:       int(aws.ToInt32(tg.Port)),
				Targets:    r.targetIds(ctx, tg, &errs),
			}
			store.Put(construct.TargetGroup, name, attrs)

			for _, lbArn := range tg.LoadBalancerArns {
				if lb, ok := lbAttrs[lbArn]; ok {
					lb.TargetGroups = append(lb.TargetGroups, name)
					lbAttrs[lbArn] = lb
					store.Put(construct.LoadBalancer, lb.Name, lb)
				}
			}
		}
	}
	return errs
}

func (r *Reader) targetIds(ctx context.Context, tg elbv2types.TargetGroup, errs *error) []construct.ResourceId {
	health, err := r.elb.DescribeTargetHealth(ctx, &elbv2.DescribeTargetHealthInput{
		TargetGroupArn: tg.TargetGroupArn,
	})
	if err != nil {
		*errs = errors.Join(*errs, err)
		return nil
	}

	var ids []construct.ResourceId
	for _, thd := range health.TargetHealthDescriptions {
		if thd.Target == nil {
			continue
		}
		target := aws.ToString(thd.Target.Id)
		switch tg.TargetType {
		case elbv2types.TargetTypeEnumInstance:
			ids = append(ids, construct.Id(construct.Instance, target))
		case elbv2types.TargetTypeEnumLambda:
			ids = append(ids, construct.Id(construct.Function, arnResource(target)))
		}
	}
	return ids
}

func (r *Reader) readFunctions(ctx context.Context, store *construct.Store, _ *construct.RelationshipSet) error {
	var errs error

	// Event source mappings first, so functions can be stored complete.
	sources := make(map[string][]construct.ResourceId)
	mappings := lambda.NewListEventSourceMappingsPaginator(r.lambda, &lambda.ListEventSourceMappingsInput{})
	for mappings.HasMorePages() {
		page, err := mappings.NextPage(ctx)
		if err != nil {
			errs = errors.Join(errs, err)
			break
		}
		for _, m := range page.EventSourceMappings {
			fn := arnResource(aws.ToString(m.FunctionArn))
			if src, ok := eventSourceId(aws.ToString(m.EventSourceArn)); ok {
				sources[fn] = append(sources[fn], src)
			}
		}
	}

	fns := lambda.NewListFunctionsPaginator(r.lambda, &lambda.ListFunctionsInput{})
	for fns.HasMorePages() {
		page, err := fns.NextPage(ctx)
		if err != nil {
			errs = errors.Join(errs, err)
			break
		}
		for _, f := range page.Functions {
			name := aws.ToString(f.FunctionName)
			attrs := construct.FunctionAttrs{
				Name:         name,
				Runtime:      string(f.Runtime),
				EventSources: sources[name],
			}
			if f.VpcConfig != nil {
				attrs.VpcId = aws.ToString(f.VpcConfig.VpcId)
				attrs.SubnetIds = f.VpcConfig.SubnetIds
			}
			store.Put(construct.Function, name, attrs)
		}
	}
	return errs
}

// eventSourceId maps an event source ARN onto the triggering resource.
// Unsupported sources (kinesis, kafka) report false.
func eventSourceId(arn string) (construct.ResourceId, bool) {
	parts := strings.Split(arn, ":")
	if len(parts) < 6 {
		return construct.ResourceId{}, false
	}
	switch parts[2] {
	case "sqs":
		return construct.Id(construct.Queue, parts[5]), true
	case "sns":
		return construct.Id(construct.Topic, parts[5]), true
	case "dynamodb":
		// arn:aws:dynamodb:region:acct:table/name/stream/timestamp
		resource := parts[5]
		if name, ok := strings.CutPrefix(resource, "table/"); ok {
			name, _, _ = strings.Cut(name, "/")
			return construct.Id(construct.Table, name), true
		}
	}
	return construct.ResourceId{}, false
}

func (r *Reader) readDatabases(ctx context.Context, store *construct.Store, _ *construct.RelationshipSet) error {
	var errs error

	dbs := rds.NewDescribeDBInstancesPaginator(r.rds, &rds.DescribeDBInstancesInput{})
	for dbs.HasMorePages() {
		page, err := dbs.NextPage(ctx)
		if err != nil {
			errs = errors.Join(errs, err)
			break
		}
		for _, db := range page.DBInstances {
			name := aws.ToString(db.DBInstanceIdentifier)
			attrs := construct.DatabaseAttrs{
				Name:   name,
				Engine: aws.ToString(db.Engine),
			}
			if db.DBSubnetGroup != nil {
				attrs.VpcId = aws.ToString(db.DBSubnetGroup.VpcId)
				for _, subnet := range db.DBSubnetGroup.Subnets {
					attrs.SubnetIds = append(attrs.SubnetIds, aws.ToString(subnet.SubnetIdentifier))
				}
			}
			store.Put(construct.Database, name, attrs)
		}
	}
	return errs
}

func (r *Reader) readContainers(ctx context.Context, store *construct.Store, _ *construct.RelationshipSet) error {
	var errs error

	var clusterArns []string
	clusters := ecs.NewListClustersPaginator(r.ecs, &ecs.ListClustersInput{})
	for clusters.HasMorePages() {
		page, err := clusters.NextPage(ctx)
		if err != nil {
			errs = errors.Join(errs, err)
			break
		}
		clusterArns = append(clusterArns, page.ClusterArns...)
	}

	for _, batch := range chunk(clusterArns, 10) {
		out, err := r.ecs.DescribeClusters(ctx, &ecs.DescribeClustersInput{Clusters: batch})
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		for _, c := range out.Clusters {
			store.Put(construct.ContainerCluster, aws.ToString(c.ClusterName), construct.ContainerClusterAttrs{
				Name:   aws.ToString(c.ClusterName),
				Status: aws.ToString(c.Status),
			})
		}
	}

	for _, clusterArn := range clusterArns {
		clusterName := arnResource(clusterArn)

		var serviceArns []string
		services := ecs.NewListServicesPaginator(r.ecs, &ecs.ListServicesInput{Cluster: aws.String(clusterArn)})
		for services.HasMorePages() {
			page, err := services.NextPage(ctx)
			if err != nil {
				errs = errors.Join(errs, err)
				break
			}
			serviceArns = append(serviceArns, page.ServiceArns...)
		}

		for _, batch := range chunk(serviceArns, 10) {
			out, err := r.ecs.DescribeServices(ctx, &ecs.DescribeServicesInput{
				Cluster:  aws.String(clusterArn),
				Services: batch,
			})
			if err != nil {
				errs = errors.Join(errs, err)
				continue
			}
			for _, s := range out.Services {
				attrs := construct.ContainerServiceAttrs{
					Name:       aws.ToString(s.ServiceName),
					Cluster:    clusterName,
					LaunchType: string(s.LaunchType),
				}
				if s.NetworkConfiguration != nil && s.NetworkConfiguration.AwsvpcConfiguration != nil {
					attrs.SubnetIds = s.NetworkConfiguration.AwsvpcConfiguration.Subnets
				}
				store.Put(construct.ContainerService, attrs.Name, attrs)
			}
		}
	}
	return errs
}

func (r *Reader) readFileSystems(ctx context.Context, store *construct.Store, _ *construct.RelationshipSet) error {
	var errs error

	pager := efs.NewDescribeFileSystemsPaginator(r.efs, &efs.DescribeFileSystemsInput{})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			errs = errors.Join(errs, err)
			break
		}
		for _, fs := range page.FileSystems {
			id := aws.ToString(fs.FileSystemId)
			name := aws.ToString(fs.Name)
			if name == "" {
				name = id
			}
			store.Put(construct.FileSystem, id, construct.FileSystemAttrs{Name: name})
		}
	}
	return errs
}

func (r *Reader) readBuckets(ctx context.Context, store *construct.Store, _ *construct.RelationshipSet) error {
	out, err := r.s3.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return err
	}
	for _, b := range out.Buckets {
		name := aws.ToString(b.Name)
		store.Put(construct.Bucket, name, construct.BucketAttrs{Name: name})
	}
	return nil
}

func (r *Reader) readQueues(ctx context.Context, store *construct.Store, _ *construct.RelationshipSet) error {
	var errs error

	pager := sqs.NewListQueuesPaginator(r.sqs, &sqs.ListQueuesInput{})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			errs = errors.Join(errs, err)
			break
		}
		for _, url := range page.QueueUrls {
			name := url
			if i := strings.LastIndex(url, "/"); i >= 0 {
				name = url[i+1:]
			}
			store.Put(construct.Queue, name, construct.QueueAttrs{Name: name, Url: url})
		}
	}
	return errs
}

func (r *Reader) readTopics(ctx context.Context, store *construct.Store, _ *construct.RelationshipSet) error {
	var errs error

	pager := sns.NewListTopicsPaginator(r.sns, &sns.ListTopicsInput{})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			errs = errors.Join(errs, err)
			break
		}
		for _, t := range page.Topics {
			arn := aws.ToString(t.TopicArn)
			name := arnResource(arn)
			store.Put(construct.Topic, name, construct.TopicAttrs{Name: name, Arn: arn})
		}
	}
	return errs
}

func (r *Reader) readTables(ctx context.Context, store *construct.Store, _ *construct.RelationshipSet) error {
	var errs error

	pager := dynamodb.NewListTablesPaginator(r.dynamo, &dynamodb.ListTablesInput{})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			errs = errors.Join(errs, err)
			break
		}
		for _, name := range page.TableNames {
			store.Put(construct.Table, name, construct.TableAttrs{Name: name})
		}
	}
	return errs
}

func chunk(items []string, size int) [][]string {
	var out [][]string
	for len(items) > size {
		out = append(out, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
