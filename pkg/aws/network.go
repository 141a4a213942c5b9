package aws

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/cloudsketch/cloudsketch/pkg/construct"
)

// readNetwork scans the EC2 networking surface: VPCs, subnets, gateways,
// security groups, endpoints, and instances. Instance security-group
// membership is emitted as explicit edges because the group list is not part
// of the instance's placement attributes.
func (r *Reader) readNetwork(ctx context.Context, store *construct.Store, extra *construct.RelationshipSet) error {
	var errs error

	vpcs := ec2.NewDescribeVpcsPaginator(r.ec2, &ec2.DescribeVpcsInput{})
	for vpcs.HasMorePages() {
		page, err := vpcs.NextPage(ctx)
		if err != nil {
			errs = errors.Join(errs, err)
			break
		}
		for _, v := range page.Vpcs {
			id := aws.ToString(v.VpcId)
			store.Put(construct.Vpc, id, construct.VpcAttrs{
				Name:      nameTag(v.Tags, id),
				CidrBlock: aws.ToString(v.CidrBlock),
			})
		}
	}

	subnets := ec2.NewDescribeSubnetsPaginator(r.ec2, &ec2.DescribeSubnetsInput{})
	for subnets.HasMorePages() {
		page, err := subnets.NextPage(ctx)
		if err != nil {
			errs = errors.Join(errs, err)
			break
		}
		for _, s := range page.Subnets {
			id := aws.ToString(s.SubnetId)
			store.Put(construct.Subnet, id, construct.SubnetAttrs{
				Name:             nameTag(s.Tags, id),
				VpcId:            aws.ToString(s.VpcId),
				CidrBlock:        aws.ToString(s.CidrBlock),
				AvailabilityZone: aws.ToString(s.AvailabilityZone),
				IsPublic:         aws.ToBool(s.MapPublicIpOnLaunch),
			})
		}
	}

	igws := ec2.NewDescribeInternetGatewaysPaginator(r.ec2, &ec2.DescribeInternetGatewaysInput{})
	for igws.HasMorePages() {
		page, err := igws.NextPage(ctx)
		if err != nil {
			errs = errors.Join(errs, err)
			break
		}
		for _, gw := range page.InternetGateways {
			id := aws.ToString(gw.InternetGatewayId)
			attrs := construct.InternetGatewayAttrs{Name: nameTag(gw.Tags, id)}
			if len(gw.Attachments) > 0 {
				attrs.AttachedVpcId = aws.ToString(gw.Attachments[0].VpcId)
			}
			store.Put(construct.InternetGateway, id, attrs)
		}
	}

	nats := ec2.NewDescribeNatGatewaysPaginator(r.ec2, &ec2.DescribeNatGatewaysInput{})
	for nats.HasMorePages() {
		page, err := nats.NextPage(ctx)
		if err != nil {
			errs = errors.Join(errs, err)
			break
		}
		for _, nat := range page.NatGateways {
			if nat.State == ec2types.NatGatewayStateDeleted {
				continue
			}
			id := aws.ToString(nat.NatGatewayId)
			store.Put(construct.NatGateway, id, construct.NatGatewayAttrs{
				Name:     nameTag(nat.Tags, id),
				VpcId:    aws.ToString(nat.VpcId),
				SubnetId: aws.ToString(nat.SubnetId),
			})
		}
	}

	sgs := ec2.NewDescribeSecurityGroupsPaginator(r.ec2, &ec2.DescribeSecurityGroupsInput{})
	for sgs.HasMorePages() {
		page, err := sgs.NextPage(ctx)
		if err != nil {
			errs = errors.Join(errs, err)
			break
		}
		for _, sg := range page.SecurityGroups {
			id := aws.ToString(sg.GroupId)
			store.Put(construct.SecurityGroup, id, construct.SecurityGroupAttrs{
				Name:        aws.ToString(sg.GroupName),
				VpcId:       aws.ToString(sg.VpcId),
				Description: aws.ToString(sg.Description),
			})
		}
	}

	endpoints := ec2.NewDescribeVpcEndpointsPaginator(r.ec2, &ec2.DescribeVpcEndpointsInput{})
	for endpoints.HasMorePages() {
		page, err := endpoints.NextPage(ctx)
		if err != nil {
			errs = errors.Join(errs, err)
			break
		}
		for _, ep := range page.VpcEndpoints {
			id := aws.ToString(ep.VpcEndpointId)
			store.Put(construct.VpcEndpoint, id, construct.VpcEndpointAttrs{
				Name:         nameTag(ep.Tags, id),
				VpcId:        aws.ToString(ep.VpcId),
				SubnetIds:    ep.SubnetIds,
				ServiceName:  aws.ToString(ep.ServiceName),
				EndpointType: string(ep.VpcEndpointType),
			})
		}
	}

	instances := ec2.NewDescribeInstancesPaginator(r.ec2, &ec2.DescribeInstancesInput{})
	for instances.HasMorePages() {
		page, err := instances.NextPage(ctx)
		if err != nil {
			errs = errors.Join(errs, err)
			break
		}
		for _, res := range page.Reservations {
			for _, i := range res.Instances {
				state := ""
				if i.State != nil {
					state = string(i.State.Name)
				}
				if state == string(ec2types.InstanceStateNameTerminated) {
					continue
				}
				id := aws.ToString(i.InstanceId)
				az := ""
				if i.Placement != nil {
					az = aws.ToString(i.Placement.AvailabilityZone)
				}
				store.Put(construct.Instance, id, construct.InstanceAttrs{
					Name:             nameTag(i.Tags, id),
					SubnetId:         aws.ToString(i.SubnetId),
					VpcId:            aws.ToString(i.VpcId),
					InstanceType:     string(i.InstanceType),
					State:            state,
					PrivateIp:        aws.ToString(i.PrivateIpAddress),
					AvailabilityZone: az,
				})
				for _, sg := range i.SecurityGroups {
					extra.Add(
						construct.Id(construct.Instance, id),
						construct.Id(construct.SecurityGroup, aws.ToString(sg.GroupId)),
						construct.UsesSecurityGroup, "",
					)
				}
			}
		}
	}

	return errs
}
