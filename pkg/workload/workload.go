// Package workload builds the declarative objects for an autoscaled workload:
// a deployment, a service exposing its ports, and a keda scaledobject binding
// a trigger to it.
package workload

import (
	"fmt"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

type Workload struct {
	Name          string
	Image         string
	Namespace     string
	CPURequest    string
	CPULimit      string
	MemoryRequest string
	MemoryLimit   string
	Ports         Ports
	Trigger       string
	Threshold     int
}

// Default returns the sample workload: nginx on port 80, autoscaled on cpu.
func Default() Workload {
	return Workload{
		Name:          "example-deployment",
		Image:         "nginx:latest",
		Namespace:     "default",
		CPURequest:    "100m",
		CPULimit:      "200m",
		MemoryRequest: "128Mi",
		MemoryLimit:   "256Mi",
		Ports:         Ports{80},
		Trigger:       "cpu",
		Threshold:     50,
	}
}

func (workload Workload) ServiceName() string      { return workload.Name + "-service" }
func (workload Workload) ScaledObjectName() string { return workload.Name + "-scaledobject" }

// Resources returns the workload's objects in submission order.
func (workload Workload) Resources() []*unstructured.Unstructured {
	return []*unstructured.Unstructured{
		workload.Deployment(),
		workload.Service(),
		workload.ScaledObject(),
	}
}

// Deployment builds the workload deployment. The replica count is fixed at 1;
// scaling past it belongs to the scaledobject. Resource quantities are passed
// through as-is and validated by the api server.
func (workload Workload) Deployment() *unstructured.Unstructured {
	containerPorts := make([]any, len(workload.Ports))
	for i, port := range workload.Ports {
		containerPorts[i] = map[string]any{"containerPort": int64(port)}
	}

	return &unstructured.Unstructured{
		Object: map[string]any{
			"apiVersion": "apps/v1",
			"kind":       "Deployment",
			"metadata": map[string]any{
				"name":      workload.Name,
				"namespace": workload.Namespace,
			},
			"spec": map[string]any{
				"replicas": int64(1),
				"selector": map[string]any{
					"matchLabels": map[string]any{"app": workload.Name},
				},
				"template": map[string]any{
					"metadata": map[string]any{
						"labels": map[string]any{"app": workload.Name},
					},
					"spec": map[string]any{
						"containers": []any{
							map[string]any{
								"name":  workload.Name,
								"image": workload.Image,
								"resources": map[string]any{
									"requests": map[string]any{
										"cpu":    workload.CPURequest,
										"memory": workload.MemoryRequest,
									},
									"limits": map[string]any{
										"cpu":    workload.CPULimit,
										"memory": workload.MemoryLimit,
									},
								},
								"ports": containerPorts,
							},
						},
					},
				},
			},
		},
	}
}

// Service builds the service for the workload, mapping each container port to
// itself as both listen and target port, in order.
func (workload Workload) Service() *unstructured.Unstructured {
	servicePorts := make([]any, len(workload.Ports))
	for i, port := range workload.Ports {
		servicePorts[i] = map[string]any{
			"port":       int64(port),
			"targetPort": int64(port),
		}
	}

	return &unstructured.Unstructured{
		Object: map[string]any{
			"apiVersion": "v1",
			"kind":       "Service",
			"metadata": map[string]any{
				"name":      workload.ServiceName(),
				"namespace": workload.Namespace,
			},
			"spec": map[string]any{
				"selector": map[string]any{"app": workload.Name},
				"ports":    servicePorts,
			},
		},
	}
}

// ScaledObject builds the autoscaling rule: a single trigger whose threshold
// keda expects as a string.
func (workload Workload) ScaledObject() *unstructured.Unstructured {
	return &unstructured.Unstructured{
		Object: map[string]any{
			"apiVersion": "keda.sh/v1alpha1",
			"kind":       "ScaledObject",
			"metadata": map[string]any{
				"name":      workload.ScaledObjectName(),
				"namespace": workload.Namespace,
			},
			"spec": map[string]any{
				"scaleTargetRef": map[string]any{
					"name": workload.Name,
				},
				"triggers": []any{
					map[string]any{
						"type": workload.Trigger,
						"metadata": map[string]any{
							"value": strconv.Itoa(workload.Threshold),
						},
					},
				},
			},
		},
	}
}

// Ports is a comma separated list of container ports. It parses from flags and
// environment variables alike.
type Ports []int

func (ports Ports) String() string {
	segments := make([]string, len(ports))
	for i, port := range ports {
		segments[i] = strconv.Itoa(port)
	}
	return strings.Join(segments, ",")
}

func (ports *Ports) Set(value string) error {
	var next Ports
	for _, segment := range strings.Split(value, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		port, err := strconv.Atoi(segment)
		if err != nil {
			return fmt.Errorf("invalid port %q", segment)
		}
		next = append(next, port)
	}
	if len(next) == 0 {
		return fmt.Errorf("no ports provided")
	}
	*ports = next
	return nil
}

func (ports *Ports) UnmarshalText(data []byte) error {
	return ports.Set(string(data))
}
