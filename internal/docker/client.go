package docker

import (
	"fmt"
	"os"

	"github.com/docker/docker/client"
	"github.com/volkeep/volkeep/internal/runtime"
)

type Client struct {
	cli         *client.Client
	runtimeInfo *runtime.RuntimeInfo
	helperImage string
}

func NewClient(prefer, helperImage string) (*Client, error) {
	runtimeInfo, err := runtime.DetectRuntime(prefer)
	if err != nil {
		return nil, fmt.Errorf("failed to detect container runtime: %w\nplease install docker or podman", err)
	}

	if err := runtimeInfo.EnsureSocketExists(); err != nil {
		return nil, err
	}

	if os.Getenv("DOCKER_HOST") == "" {
		os.Setenv("DOCKER_HOST", runtimeInfo.GetSocketURI())
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create container runtime client: %w", err)
	}

	return &Client{
		cli:         cli,
		runtimeInfo: runtimeInfo,
		helperImage: helperImage,
	}, nil
}

func (c *Client) Close() error {
	return c.cli.Close()
}

func (c *Client) GetClient() *client.Client {
	return c.cli
}

func (c *Client) GetRuntimeInfo() *runtime.RuntimeInfo {
	return c.runtimeInfo
}
