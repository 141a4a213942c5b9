package construct

// ResourceKind tags which AWS construct a resource represents. The string
// form appears in ids, export metadata, and render styles, so values are
// stable snake_case rather than Go names.
type ResourceKind string

const (
	Vpc              ResourceKind = "vpc"
	Subnet           ResourceKind = "subnet"
	InternetGateway  ResourceKind = "internet_gateway"
	NatGateway       ResourceKind = "nat_gateway"
	SecurityGroup    ResourceKind = "security_group"
	VpcEndpoint      ResourceKind = "vpc_endpoint"
	Instance         ResourceKind = "instance"
	ContainerCluster ResourceKind = "container_cluster"
	ContainerService ResourceKind = "container_service"
	Function         ResourceKind = "function"
	Database         ResourceKind = "database"
	Table            ResourceKind = "table"
	Bucket           ResourceKind = "bucket"
	FileSystem       ResourceKind = "file_system"
	LoadBalancer     ResourceKind = "load_balancer"
	TargetGroup      ResourceKind = "target_group"
	Queue            ResourceKind = "queue"
	Topic            ResourceKind = "topic"
)

// Container reports whether resources of this kind own other resources in
// the containment hierarchy and render as boxes rather than icons.
func (k ResourceKind) Container() bool {
	return k == Vpc || k == Subnet
}
