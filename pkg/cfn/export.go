package cfn

import (
	"fmt"
	"io"
	"regexp"
	"sort"

	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cloudsketch/cloudsketch/pkg/construct"
	"github.com/cloudsketch/cloudsketch/pkg/set"
)

const metadataKey = "CloudSketch"

// cfnTypes maps resource kinds to CloudFormation type names. The reverse
// map drives the importer's fallback when a template was not written by us.
var cfnTypes = map[construct.ResourceKind]string{
	construct.Vpc:              "AWS::EC2::VPC",
	construct.Subnet:           "AWS::EC2::Subnet",
	construct.InternetGateway:  "AWS::EC2::InternetGateway",
	construct.NatGateway:       "AWS::EC2::NatGateway",
	construct.SecurityGroup:    "AWS::EC2::SecurityGroup",
	construct.VpcEndpoint:      "AWS::EC2::VPCEndpoint",
	construct.Instance:         "AWS::EC2::Instance",
	construct.ContainerCluster: "AWS::ECS::Cluster",
	construct.ContainerService: "AWS::ECS::Service",
	construct.Function:         "AWS::Lambda::Function",
	construct.Database:         "AWS::RDS::DBInstance",
	construct.Table:            "AWS::DynamoDB::Table",
	construct.Bucket:           "AWS::S3::Bucket",
	construct.FileSystem:       "AWS::EFS::FileSystem",
	construct.LoadBalancer:     "AWS::ElasticLoadBalancingV2::LoadBalancer",
	construct.TargetGroup:      "AWS::ElasticLoadBalancingV2::TargetGroup",
	construct.Queue:            "AWS::SQS::Queue",
	construct.Topic:            "AWS::SNS::Topic",
}

var kindsByType = func() map[string]construct.ResourceKind {
	m := make(map[string]construct.ResourceKind, len(cfnTypes))
	for kind, typ := range cfnTypes {
		m[typ] = kind
	}
	return m
}()

// File exports the inventory as a CloudFormation-shaped YAML template. The
// template is a portable snapshot, not a deployable stack: properties are
// the discovered attribute values and the per-resource metadata block keeps
// enough identity to import losslessly.
type File struct {
	FilenamePrefix string
	AppName        string
	Region         string
	Store          *construct.Store
}

func (f *File) Path() string {
	return fmt.Sprintf("%stemplate.yaml", f.FilenamePrefix)
}

func (f *File) WriteTo(w io.Writer) (int64, error) {
	doc, err := f.template()
	if err != nil {
		return 0, err
	}

	cw := &countingWriter{w: w}
	enc := yaml.NewEncoder(cw)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return cw.n, err
	}
	err = enc.Close()
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// template builds the document as a yaml.Node tree so resources keep store
// order; a plain map marshal would shuffle them every run.
func (f *File) template() (*yaml.Node, error) {
	log := zap.S().Named("cfn")
	resources := &yaml.Node{Kind: yaml.MappingNode}
	logicalIds := make(set.Set[string])

	for _, r := range f.Store.All() {
		// Unmapped kinds (foreign imports decoded as generic resources) are
		// skipped so the rest of the inventory still exports.
		typ, ok := cfnTypes[r.ID.Kind]
		if !ok {
			log.Debugf("%s: no CloudFormation type, skipping", r.ID)
			continue
		}

		props, err := properties(r)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding properties of %s", r.ID)
		}

		body := &yaml.Node{Kind: yaml.MappingNode}
		appendPair(body, "Type", typ)
		if len(props) > 0 {
			appendPair(body, "Properties", orderedMap(props))
		}
		appendPair(body, "Metadata", orderedMap(map[string]any{
			metadataKey: map[string]any{
				"Kind": string(r.ID.Kind),
				"Name": r.ID.Name,
			},
		}))

		appendPair(resources, logicalId(r.ID, logicalIds), body)
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	appendPair(root, "AWSTemplateFormatVersion", "2010-09-09")
	appendPair(root, "Description", fmt.Sprintf("%s resource inventory", f.AppName))
	appendPair(root, "Metadata", orderedMap(map[string]any{
		metadataKey: map[string]any{
			"AppName": f.AppName,
			"Region":  f.Region,
		},
	}))
	appendPair(root, "Resources", resources)
	return root, nil
}

// properties flattens the typed attributes into a property bag via their
// mapstructure tags, dropping zero values so the template stays readable.
func properties(r *construct.Resource) (map[string]any, error) {
	out := make(map[string]any)
	if r.Attrs == nil {
		return out, nil
	}
	if err := mapstructure.Decode(r.Attrs, &out); err != nil {
		return nil, err
	}
	for k, v := range out {
		if isZeroValue(v) {
			delete(out, k)
		}
	}
	return out, nil
}

func isZeroValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case int:
		return t == 0
	case []string:
		return len(t) == 0
	case []construct.ResourceId:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// logicalId derives a unique CamelCase logical id from the composite key.
func logicalId(id construct.ResourceId, seen set.Set[string]) string {
	base := strcase.ToCamel(nonAlnum.ReplaceAllString(string(id.Kind)+" "+id.Name, " "))
	candidate := base
	for i := 2; seen.Contains(candidate); i++ {
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	seen.Add(candidate)
	return candidate
}

func appendPair(m *yaml.Node, key string, value any) {
	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
	var valueNode *yaml.Node
	if n, ok := value.(*yaml.Node); ok {
		valueNode = n
	} else {
		valueNode = &yaml.Node{}
		if err := valueNode.Encode(value); err != nil {
			valueNode = &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprint(value)}
		}
	}
	m.Content = append(m.Content, keyNode, valueNode)
}

// orderedMap encodes a plain map with sorted keys for stable output.
func orderedMap(m map[string]any) *yaml.Node {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		v := m[k]
		if nested, ok := v.(map[string]any); ok {
			appendPair(node, k, orderedMap(nested))
			continue
		}
		appendPair(node, k, v)
	}
	return node
}
