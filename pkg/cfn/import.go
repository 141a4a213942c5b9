package cfn

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cloudsketch/cloudsketch/pkg/construct"
)

type rawResource struct {
	Type       string         `yaml:"Type"`
	Properties map[string]any `yaml:"Properties"`
	Metadata   struct {
		CloudSketch struct {
			Kind string `yaml:"Kind"`
			Name string `yaml:"Name"`
		} `yaml:"CloudSketch"`
	} `yaml:"Metadata"`
}

// Import reads a CloudFormation template back into a store and re-derives
// the relationship set from the decoded attributes. Templates we exported
// round-trip exactly; foreign templates degrade per resource (unknown types
// are skipped, intrinsic functions flatten to their referenced name).
func Import(r io.Reader) (*construct.Store, *construct.RelationshipSet, error) {
	store := construct.NewStore()
	if err := importInto(store, r); err != nil {
		return nil, nil, err
	}
	return store, construct.InferRelationships(store), nil
}

// ImportPath imports a single template file or a directory of templates.
// Directory imports merge every .yaml/.yml file, sorted by path, into one
// store before relationships are derived, so references across files still
// resolve.
func ImportPath(path string) (*construct.Store, *construct.RelationshipSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening template")
	}
	if !info.IsDir() {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening template")
		}
		defer f.Close()
		return Import(f)
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(p); ext == ".yaml" || ext == ".yml" {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "walking %s", path)
	}
	if len(files) == 0 {
		return nil, nil, errors.Errorf("no templates under %s", path)
	}
	sort.Strings(files)

	store := construct.NewStore()
	for _, p := range files {
		f, err := os.Open(p)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "opening %s", p)
		}
		err = importInto(store, f)
		f.Close()
		if err != nil {
			return nil, nil, errors.Wrapf(err, "importing %s", p)
		}
	}
	return store, construct.InferRelationships(store), nil
}

// importInto decodes one template's Resources into the store in document
// order.
func importInto(store *construct.Store, r io.Reader) error {
	log := zap.S().Named("cfn")

	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return errors.Wrap(err, "parsing template")
	}
	root := &doc
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root = doc.Content[0]
	}

	resources := childByKey(root, "Resources")
	if resources == nil || resources.Kind != yaml.MappingNode {
		return errors.New("template has no Resources section")
	}

	for i := 0; i+1 < len(resources.Content); i += 2 {
		logical := resources.Content[i].Value
		body := resources.Content[i+1]
		normalizeIntrinsics(body)

		var raw rawResource
		if err := body.Decode(&raw); err != nil {
			return errors.Wrapf(err, "decoding resource %s", logical)
		}

		kind := construct.ResourceKind(raw.Metadata.CloudSketch.Kind)
		if kind == "" {
			var ok bool
			kind, ok = kindsByType[raw.Type]
			if !ok {
				log.Debugf("%s: unsupported type %s, skipping", logical, raw.Type)
				continue
			}
		}
		name := raw.Metadata.CloudSketch.Name
		if name == "" {
			name = cast.ToString(raw.Properties["Name"])
		}
		if name == "" {
			name = logical
		}

		attrs, err := decodeAttrs(kind, name, raw.Properties)
		if err != nil {
			return errors.Wrapf(err, "decoding attributes of %s", logical)
		}
		store.Put(kind, name, attrs)
	}

	log.Debugf("imported %d resources", store.Len())
	return nil
}

func childByKey(mapping *yaml.Node, key string) *yaml.Node {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// normalizeIntrinsics rewrites CloudFormation short-form intrinsics (!Ref,
// !GetAtt, !Sub, ...) into plain strings so decoding never chokes on a
// custom tag. The referenced name is kept; evaluation is out of scope.
func normalizeIntrinsics(node *yaml.Node) {
	if node == nil {
		return
	}
	if strings.HasPrefix(node.Tag, "!") && !strings.HasPrefix(node.Tag, "!!") {
		value := firstScalar(node)
		node.Kind = yaml.ScalarNode
		node.Tag = "!!str"
		node.Value = value
		node.Content = nil
		return
	}
	for _, child := range node.Content {
		normalizeIntrinsics(child)
	}
}

func firstScalar(node *yaml.Node) string {
	if node.Kind == yaml.ScalarNode {
		return node.Value
	}
	for _, child := range node.Content {
		if v := firstScalar(child); v != "" {
			return v
		}
	}
	return ""
}

// decodeAttrs maps a property bag onto the typed attribute struct for the
// kind. Unknown kinds fall back to GenericAttrs rather than failing.
func decodeAttrs(kind construct.ResourceKind, name string, props map[string]any) (construct.Attributes, error) {
	var attrs construct.Attributes
	switch kind {
	case construct.Vpc:
		attrs = &construct.VpcAttrs{}
	case construct.Subnet:
		attrs = &construct.SubnetAttrs{}
	case construct.InternetGateway:
		attrs = &construct.InternetGatewayAttrs{}
	case construct.NatGateway:
		attrs = &construct.NatGatewayAttrs{}
	case construct.SecurityGroup:
		attrs = &construct.SecurityGroupAttrs{}
	case construct.VpcEndpoint:
		attrs = &construct.VpcEndpointAttrs{}
	case construct.Instance:
		attrs = &construct.InstanceAttrs{}
	case construct.ContainerCluster:
		attrs = &construct.ContainerClusterAttrs{}
	case construct.ContainerService:
		attrs = &construct.ContainerServiceAttrs{}
	case construct.Function:
		attrs = &construct.FunctionAttrs{}
	case construct.Database:
		attrs = &construct.DatabaseAttrs{}
	case construct.Table:
		attrs = &construct.TableAttrs{}
	case construct.Bucket:
		attrs = &construct.BucketAttrs{}
	case construct.FileSystem:
		attrs = &construct.FileSystemAttrs{}
	case construct.LoadBalancer:
		attrs = &construct.LoadBalancerAttrs{}
	case construct.TargetGroup:
		attrs = &construct.TargetGroupAttrs{}
	case construct.Queue:
		attrs = &construct.QueueAttrs{}
	case construct.Topic:
		attrs = &construct.TopicAttrs{}
	default:
		return construct.GenericAttrs{Name: name, Props: props}, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           attrs,
		WeaklyTypedInput: true,
		DecodeHook:       resourceIdHook,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(props); err != nil {
		return nil, err
	}
	// attrs is a pointer for decoding; store the value like producers do.
	return reflect.ValueOf(attrs).Elem().Interface().(construct.Attributes), nil
}

// resourceIdHook lets mapstructure decode "kind/name" strings into
// composite resource ids.
func resourceIdHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(construct.ResourceId{}) || from.Kind() != reflect.String {
		return data, nil
	}
	var id construct.ResourceId
	if err := id.UnmarshalText([]byte(data.(string))); err != nil {
		return nil, err
	}
	return id, nil
}
