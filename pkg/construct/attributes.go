package construct

// PlacementKeys are the foreign keys the placement resolver consumes. Empty
// fields are normal: a missing key degrades to the next fallback level
// (subnet, then VPC, then external) instead of erroring.
type PlacementKeys struct {
	SubnetIds        []string
	VpcId            string
	AvailabilityZone string
}

// Attributes is the minimal contract every resource kind fulfils. Producers
// (the live reader and the CloudFormation importer) populate a per-kind
// struct once at ingestion; downstream code never guesses field names out of
// a property bag.
type Attributes interface {
	DisplayName() string
	Placement() PlacementKeys
}

type (
	VpcAttrs struct {
		Name      string `mapstructure:"Name"`
		CidrBlock string `mapstructure:"CidrBlock"`
	}

	SubnetAttrs struct {
		Name             string `mapstructure:"Name"`
		VpcId            string `mapstructure:"VpcId"`
		CidrBlock        string `mapstructure:"CidrBlock"`
		AvailabilityZone string `mapstructure:"AvailabilityZone"`
		// IsPublic is derived upstream from MapPublicIpOnLaunch and trusted
		// as-is by the resolver.
		IsPublic bool `mapstructure:"IsPublic"`
	}

	InternetGatewayAttrs struct {
		Name          string `mapstructure:"Name"`
		AttachedVpcId string `mapstructure:"AttachedVpcId"`
	}

	NatGatewayAttrs struct {
		Name     string `mapstructure:"Name"`
		VpcId    string `mapstructure:"VpcId"`
		SubnetId string `mapstructure:"SubnetId"`
	}

	SecurityGroupAttrs struct {
		Name        string `mapstructure:"Name"`
		VpcId       string `mapstructure:"VpcId"`
		Description string `mapstructure:"Description"`
	}

	VpcEndpointAttrs struct {
		Name         string   `mapstructure:"Name"`
		VpcId        string   `mapstructure:"VpcId"`
		SubnetIds    []string `mapstructure:"SubnetIds"`
		ServiceName  string   `mapstructure:"ServiceName"`
		EndpointType string   `mapstructure:"EndpointType"`
	}

	InstanceAttrs struct {
		Name             string `mapstructure:"Name"`
		SubnetId         string `mapstructure:"SubnetId"`
		VpcId            string `mapstructure:"VpcId"`
		InstanceType     string `mapstructure:"InstanceType"`
		State            string `mapstructure:"State"`
		PrivateIp        string `mapstructure:"PrivateIp"`
		AvailabilityZone string `mapstructure:"AvailabilityZone"`
	}

	ContainerClusterAttrs struct {
		Name   string `mapstructure:"Name"`
		Status string `mapstructure:"Status"`
	}

	ContainerServiceAttrs struct {
		Name       string   `mapstructure:"Name"`
		Cluster    string   `mapstructure:"Cluster"`
		SubnetIds  []string `mapstructure:"SubnetIds"`
		LaunchType string   `mapstructure:"LaunchType"`
	}

	FunctionAttrs struct {
		Name      string   `mapstructure:"Name"`
		Runtime   string   `mapstructure:"Runtime"`
		VpcId     string   `mapstructure:"VpcId"`
		SubnetIds []string `mapstructure:"SubnetIds"`
		// EventSources holds the ids of queues/topics/tables wired as
		// triggers, kept so the relationship set can be rebuilt on import.
		EventSources []ResourceId `mapstructure:"EventSources"`
	}

	DatabaseAttrs struct {
		Name      string   `mapstructure:"Name"`
		Engine    string   `mapstructure:"Engine"`
		VpcId     string   `mapstructure:"VpcId"`
		SubnetIds []string `mapstructure:"SubnetIds"`
	}

	TableAttrs struct {
		Name string `mapstructure:"Name"`
	}

	BucketAttrs struct {
		Name string `mapstructure:"Name"`
	}

	FileSystemAttrs struct {
		Name string `mapstructure:"Name"`
	}

	LoadBalancerAttrs struct {
		Name      string   `mapstructure:"Name"`
		Type      string   `mapstructure:"Type"` // application | network
		VpcId     string   `mapstructure:"VpcId"`
		SubnetIds []string `mapstructure:"SubnetIds"`
		DnsName   string   `mapstructure:"DnsName"`
		// TargetGroups lists the groups this balancer's listeners forward
		// to; lossy across export/import only if never exported.
		TargetGroups []string `mapstructure:"TargetGroups"`
	}

	TargetGroupAttrs struct {
		Name       string `mapstructure:"Name"`
		VpcId      string `mapstructure:"VpcId"`
		TargetType string `mapstructure:"TargetType"`
		Protocol   string `mapstructure:"Protocol"`
		Port       int    `mapstructure:"Port"`
		// Targets is filled from live target-health lookups and is the one
		// field that may not survive a CloudFormation round trip.
		Targets []ResourceId `mapstructure:"Targets"`
	}

	QueueAttrs struct {
		Name string `mapstructure:"Name"`
		Url  string `mapstructure:"Url"`
	}

	TopicAttrs struct {
		Name string `mapstructure:"Name"`
		Arn  string `mapstructure:"Arn"`
	}

	// GenericAttrs backs kinds the schema doesn't know about.
	GenericAttrs struct {
		Name  string         `mapstructure:"Name"`
		Props map[string]any `mapstructure:"Props"`
	}
)

func (a VpcAttrs) DisplayName() string    { return a.Name }
func (a VpcAttrs) Placement() PlacementKeys { return PlacementKeys{} }

func (a SubnetAttrs) DisplayName() string { return a.Name }
func (a SubnetAttrs) Placement() PlacementKeys {
	return PlacementKeys{VpcId: a.VpcId, AvailabilityZone: a.AvailabilityZone}
}

func (a InternetGatewayAttrs) DisplayName() string { return a.Name }
func (a InternetGatewayAttrs) Placement() PlacementKeys {
	return PlacementKeys{VpcId: a.AttachedVpcId}
}

func (a NatGatewayAttrs) DisplayName() string { return a.Name }
func (a NatGatewayAttrs) Placement() PlacementKeys {
	return PlacementKeys{SubnetIds: single(a.SubnetId), VpcId: a.VpcId}
}

func (a SecurityGroupAttrs) DisplayName() string { return a.Name }
func (a SecurityGroupAttrs) Placement() PlacementKeys {
	return PlacementKeys{VpcId: a.VpcId}
}

func (a VpcEndpointAttrs) DisplayName() string { return a.Name }
func (a VpcEndpointAttrs) Placement() PlacementKeys {
	return PlacementKeys{SubnetIds: a.SubnetIds, VpcId: a.VpcId}
}

func (a InstanceAttrs) DisplayName() string { return a.Name }
func (a InstanceAttrs) Placement() PlacementKeys {
	return PlacementKeys{SubnetIds: single(a.SubnetId), VpcId: a.VpcId, AvailabilityZone: a.AvailabilityZone}
}

func (a ContainerClusterAttrs) DisplayName() string    { return a.Name }
func (a ContainerClusterAttrs) Placement() PlacementKeys { return PlacementKeys{} }

func (a ContainerServiceAttrs) DisplayName() string { return a.Name }
func (a ContainerServiceAttrs) Placement() PlacementKeys {
	return PlacementKeys{SubnetIds: a.SubnetIds}
}

func (a FunctionAttrs) DisplayName() string { return a.Name }
func (a FunctionAttrs) Placement() PlacementKeys {
	return PlacementKeys{SubnetIds: a.SubnetIds, VpcId: a.VpcId}
}

func (a DatabaseAttrs) DisplayName() string { return a.Name }
func (a DatabaseAttrs) Placement() PlacementKeys {
	return PlacementKeys{SubnetIds: a.SubnetIds, VpcId: a.VpcId}
}

func (a TableAttrs) DisplayName() string      { return a.Name }
func (a TableAttrs) Placement() PlacementKeys { return PlacementKeys{} }

func (a BucketAttrs) DisplayName() string      { return a.Name }
func (a BucketAttrs) Placement() PlacementKeys { return PlacementKeys{} }

func (a FileSystemAttrs) DisplayName() string      { return a.Name }
func (a FileSystemAttrs) Placement() PlacementKeys { return PlacementKeys{} }

func (a LoadBalancerAttrs) DisplayName() string { return a.Name }
func (a LoadBalancerAttrs) Placement() PlacementKeys {
	return PlacementKeys{SubnetIds: a.SubnetIds, VpcId: a.VpcId}
}

func (a TargetGroupAttrs) DisplayName() string { return a.Name }
func (a TargetGroupAttrs) Placement() PlacementKeys {
	return PlacementKeys{VpcId: a.VpcId}
}

func (a QueueAttrs) DisplayName() string      { return a.Name }
func (a QueueAttrs) Placement() PlacementKeys { return PlacementKeys{} }

func (a TopicAttrs) DisplayName() string      { return a.Name }
func (a TopicAttrs) Placement() PlacementKeys { return PlacementKeys{} }

func (a GenericAttrs) DisplayName() string      { return a.Name }
func (a GenericAttrs) Placement() PlacementKeys { return PlacementKeys{} }

func single(id string) []string {
	if id == "" {
		return nil
	}
	return []string{id}
}
