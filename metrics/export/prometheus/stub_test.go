package prometheus

import (
	"context"

	goFlow "github.com/MrEthical07/goFlow"
)

type stubProvider struct{}

func (stubProvider) GetFlow(context.Context, goFlow.FlowType, string) (goFlow.Document, error) {
	return goFlow.Document{}, nil
}

func (stubProvider) UpdateFlow(context.Context, goFlow.FlowType, string, goFlow.UpdateBody) (goFlow.UpdateResult, error) {
	return goFlow.UpdateResult{}, nil
}

func (stubProvider) CreateLogoutFlow(context.Context) (goFlow.LogoutFlow, error) {
	return goFlow.LogoutFlow{}, nil
}

func (stubProvider) SubmitLogout(context.Context, string) error { return nil }
