package layout

import "github.com/cloudsketch/cloudsketch/pkg/construct"

// EdgeStyle is the render policy derived from a relationship kind. The
// renderers translate it into their own stroke vocabulary; the mapping
// itself lives here so all formats draw a given kind the same way.
type EdgeStyle struct {
	Color   string
	Bold    bool
	Dashed  bool
	Dotted  bool
	Labeled bool
}

var edgeStyles = map[construct.RelationshipKind]EdgeStyle{
	construct.AttachedTo:        {Color: "blue", Bold: true},
	construct.BelongsTo:         {Color: "gray", Dashed: true},
	construct.InSubnet:          {Color: "green"},
	construct.InVpc:             {Color: "blue", Dotted: true},
	construct.InCluster:         {Color: "purple"},
	construct.RoutesTo:          {Color: "red"},
	construct.Targets:           {Color: "red", Dashed: true, Labeled: true},
	construct.Triggers:          {Color: "orange", Bold: true, Labeled: true},
	construct.UsesSecurityGroup: {Color: "gray", Dashed: true},
}

func StyleFor(kind construct.RelationshipKind) EdgeStyle {
	if s, ok := edgeStyles[kind]; ok {
		return s
	}
	return EdgeStyle{Color: "gray"}
}

// kindTitles drive summary-node captions and docs headings. Unknown kinds
// fall back to the raw kind string rather than failing.
var kindTitles = map[construct.ResourceKind]string{
	construct.Vpc:              "VPC",
	construct.Subnet:           "Subnet",
	construct.InternetGateway:  "IGW",
	construct.NatGateway:       "NAT",
	construct.SecurityGroup:    "SG",
	construct.VpcEndpoint:      "VPCE",
	construct.Instance:         "EC2",
	construct.ContainerCluster: "ECS Cluster",
	construct.ContainerService: "ECS Service",
	construct.Function:         "Lambda",
	construct.Database:         "RDS",
	construct.Table:            "DynamoDB",
	construct.Bucket:           "S3",
	construct.FileSystem:       "EFS",
	construct.LoadBalancer:     "ELB",
	construct.TargetGroup:      "Target Group",
	construct.Queue:            "SQS",
	construct.Topic:            "SNS",
}

func KindTitle(kind construct.ResourceKind) string {
	if t, ok := kindTitles[kind]; ok {
		return t
	}
	return string(kind)
}
