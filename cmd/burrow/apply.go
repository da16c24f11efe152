package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/cuemby/burrow/pkg/api"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply image manifests from a YAML file",
	Long: `Apply burrow image manifests from a YAML file. A file may hold several
documents separated by '---'.

An inactive or unknown image is added. An active image whose replica count
changed is removed and added again, which evicts and re-places its
containers. Ports are replaced when they differ.

Example manifest:

  apiVersion: burrow/v1
  kind: Image
  metadata:
    name: web
  spec:
    replicas: 3
    ports:
      - from: 8080
        to: 80`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringP("file", "f", "", "YAML file to apply (required)")
	_ = applyCmd.MarkFlagRequired("file")
}

// Resource is one manifest document
type Resource struct {
	APIVersion string           `yaml:"apiVersion"`
	Kind       string           `yaml:"kind"`
	Metadata   ResourceMetadata `yaml:"metadata"`
	Spec       ImageSpec        `yaml:"spec"`
}

// ResourceMetadata names a resource
type ResourceMetadata struct {
	Name   string            `yaml:"name"`
	Labels map[string]string `yaml:"labels,omitempty"`
}

// ImageSpec is the desired state of an image
type ImageSpec struct {
	Replicas uint32              `yaml:"replicas"`
	Ports    []types.PortMapping `yaml:"ports,omitempty"`
}

// imageApplier is the part of the client apply needs
type imageApplier interface {
	ImageStatus(name string) (*api.ImageStatusResponse, error)
	ImagePorts(name string) ([]types.PortMapping, error)
	AddImage(name string, replicas uint32) error
	RemoveImage(name string) error
	SetImagePorts(name string, ports []types.PortMapping) error
}

func runApply(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	resources, err := parseManifests(data)
	if err != nil {
		return err
	}

	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	for _, r := range resources {
		msg, err := applyImage(c, r)
		if err != nil {
			return fmt.Errorf("%s: %w", r.Metadata.Name, err)
		}
		fmt.Println(msg)
	}
	return nil
}

// parseManifests decodes every document in data and validates it
func parseManifests(data []byte) ([]*Resource, error) {
	var resources []*Resource

	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var r Resource
		err := dec.Decode(&r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}

		if r.Kind != "Image" {
			return nil, fmt.Errorf("unsupported resource kind: %q", r.Kind)
		}
		if r.Metadata.Name == "" {
			return nil, fmt.Errorf("image name is required")
		}
		if r.Spec.Replicas == 0 {
			return nil, fmt.Errorf("image %s: replicas must be at least 1", r.Metadata.Name)
		}
		resources = append(resources, &r)
	}

	if len(resources) == 0 {
		return nil, fmt.Errorf("no resources found")
	}
	return resources, nil
}

// applyImage converges one image onto its manifest
func applyImage(c imageApplier, r *Resource) (string, error) {
	name := r.Metadata.Name

	st, err := c.ImageStatus(name)
	if err != nil {
		return "", err
	}

	var msg string
	switch {
	case !st.Active:
		if err := c.AddImage(name, r.Spec.Replicas); err != nil {
			return "", fmt.Errorf("failed to add image: %w", err)
		}
		msg = fmt.Sprintf("✓ Image created: %s (replicas=%d)", name, r.Spec.Replicas)
	case st.Replicas != r.Spec.Replicas:
		if err := c.RemoveImage(name); err != nil {
			return "", fmt.Errorf("failed to remove image: %w", err)
		}
		if err := c.AddImage(name, r.Spec.Replicas); err != nil {
			return "", fmt.Errorf("failed to re-add image: %w", err)
		}
		msg = fmt.Sprintf("✓ Image recreated: %s (replicas %d -> %d)", name, st.Replicas, r.Spec.Replicas)
	}

	current, err := c.ImagePorts(name)
	if err != nil {
		return "", err
	}
	if !samePorts(current, r.Spec.Ports) {
		if err := c.SetImagePorts(name, r.Spec.Ports); err != nil {
			return "", fmt.Errorf("failed to set ports: %w", err)
		}
		if msg == "" {
			msg = fmt.Sprintf("✓ Image ports updated: %s", name)
		}
	}

	if msg == "" {
		msg = fmt.Sprintf("Image unchanged: %s", name)
	}
	return msg, nil
}

func samePorts(a, b []types.PortMapping) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
