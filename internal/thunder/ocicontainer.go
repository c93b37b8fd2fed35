package thunder

import (
	"context"
	"fmt"
)

// ContainerInfo is one entry of listContainers.
type ContainerInfo struct {
	Descriptor int    `json:"Descriptor"`
	ID         string `json:"Id"`
}

type status struct {
	Success bool `json:"success"`
}

func (s status) check(method string) error {
	if !s.Success {
		return fmt.Errorf("%s: %w", method, ErrUnsuccessful)
	}
	return nil
}

// StartContainer starts a container from an OCI bundle and returns its
// descriptor. An empty command keeps the bundle's entry point.
func (c *Client) StartContainer(ctx context.Context, id, bundlePath, command string) (int, error) {
	params := map[string]string{
		"containerId": id,
		"bundlePath":  bundlePath,
		"command":     command,
	}
	var res struct {
		status
		Descriptor int `json:"descriptor"`
	}
	if err := c.Call(ctx, "startContainer", params, &res); err != nil {
		return 0, err
	}
	return res.Descriptor, res.check("startContainer")
}

// ListContainers returns the running containers.
func (c *Client) ListContainers(ctx context.Context) ([]ContainerInfo, error) {
	var res struct {
		status
		Containers []ContainerInfo `json:"containers"`
	}
	if err := c.Call(ctx, "listContainers", nil, &res); err != nil {
		return nil, err
	}
	return res.Containers, res.check("listContainers")
}

// GetContainerState returns the state of container id, for example
// "Running" or "Paused".
func (c *Client) GetContainerState(ctx context.Context, id string) (string, error) {
	var res struct {
		status
		State string `json:"state"`
	}
	if err := c.Call(ctx, "getContainerState", map[string]string{"containerId": id}, &res); err != nil {
		return "", err
	}
	return res.State, res.check("getContainerState")
}

// PauseContainer freezes container id.
func (c *Client) PauseContainer(ctx context.Context, id string) error {
	return c.simple(ctx, "pauseContainer", map[string]interface{}{"containerId": id})
}

// ResumeContainer thaws container id.
func (c *Client) ResumeContainer(ctx context.Context, id string) error {
	return c.simple(ctx, "resumeContainer", map[string]interface{}{"containerId": id})
}

// StopContainer stops container id, killing it when force is set.
func (c *Client) StopContainer(ctx context.Context, id string, force bool) error {
	return c.simple(ctx, "stopContainer", map[string]interface{}{"containerId": id, "force": force})
}

func (c *Client) simple(ctx context.Context, method string, params interface{}) error {
	var res status
	if err := c.Call(ctx, method, params, &res); err != nil {
		return err
	}
	return res.check(method)
}
