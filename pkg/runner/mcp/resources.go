package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerTasksResource(srv, svc)
	registerEventsResource(srv, svc)
	registerPlacesResource(srv, svc)
	registerDayTemplate(srv, svc)
}

func registerTasksResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"notiq://tasks",
		"Tasks",
		mcp.WithResourceDescription("Active and completed tasks, flagged first then by due time."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		active, err := svc.ListTasks(ctx, false, nil)
		if err != nil {
			return nil, err
		}
		completed, err := svc.ListTasks(ctx, true, nil)
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"tasks":     active,
			"completed": completed,
			"count":     len(active) + len(completed),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerEventsResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"notiq://events",
		"Events",
		mcp.WithResourceDescription("Calendar events, flagged first then by time."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		events, err := svc.ListEvents(ctx, nil)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"events": events,
			"count":  len(events),
		})
	})
}

func registerPlacesResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"notiq://places",
		"Study Places",
		mcp.WithResourceDescription("Saved study places by name."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := svc.ListStudyPlaces(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"places": list,
			"count":  len(list),
		})
	})
}

func registerDayTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"notiq://day/{date}",
		"Day",
		mcp.WithTemplateDescription("Tasks and events on one calendar day, given as 2006-01-02."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		raw := request.Params.Arguments["date"]
		// Template values arrive as []string.
		if list, ok := raw.([]string); ok && len(list) > 0 {
			raw = list[0]
		}
		v, _ := raw.(string)
		if v == "" {
			return nil, fmt.Errorf("date is required")
		}
		date, err := svc.ParseDate(v)
		if err != nil {
			return nil, err
		}

		day, err := svc.Day(ctx, date)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, day)
	})
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
