package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/model"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerAddTaskTool(srv, svc)
	registerUpdateTaskTool(srv, svc)
	registerDeleteTaskTool(srv, svc)
	registerCompleteTaskTool(srv, svc, "complete_task", true)
	registerCompleteTaskTool(srv, svc, "reopen_task", false)
	registerListTasksTool(srv, svc)
	registerAddEventTool(srv, svc)
	registerUpdateEventTool(srv, svc)
	registerDeleteEventTool(srv, svc)
	registerListEventsTool(srv, svc)
	registerAddStudyPlaceTool(srv, svc)
	registerDeleteStudyPlaceTool(srv, svc)
	registerListStudyPlacesTool(srv, svc)
	registerSearchPlacesTool(srv, svc)
	registerTodayTool(srv, svc)
	registerUpcomingTool(srv, svc)
	registerForDateTool(srv, svc)
}

func taskFields(required bool) []mcp.ToolOption {
	title := []mcp.PropertyOption{mcp.Description("Short task title.")}
	course := []mcp.PropertyOption{mcp.Description("Course the task belongs to.")}
	if required {
		title = append(title, mcp.Required())
		course = append(course, mcp.Required())
	}
	return []mcp.ToolOption{
		mcp.WithString("title", title...),
		mcp.WithString("course", course...),
		mcp.WithString("description", mcp.Description("Longer free text description.")),
		mcp.WithString("due", mcp.Description("Due time as RFC3339, 2006-01-02T15:04 or 2006-01-02.")),
		mcp.WithString("location", mcp.Description("Where the task happens.")),
		mcp.WithString("address", mcp.Description("Street address of the location.")),
		mcp.WithBoolean("flagged", mcp.Description("Flagged tasks sort first.")),
	}
}

func eventFields(required bool) []mcp.ToolOption {
	title := []mcp.PropertyOption{mcp.Description("Event title.")}
	if required {
		title = append(title, mcp.Required())
	}
	return []mcp.ToolOption{
		mcp.WithString("title", title...),
		mcp.WithString("description", mcp.Description("Longer free text description.")),
		mcp.WithString("date", mcp.Description("Event day as 2006-01-02. Defaults to the start day.")),
		mcp.WithBoolean("allDay", mcp.Description("The event lasts the whole day; start and end are ignored.")),
		mcp.WithString("start", mcp.Description("Start time as RFC3339 or 2006-01-02T15:04.")),
		mcp.WithString("end", mcp.Description("End time, must be after start.")),
		mcp.WithString("location", mcp.Description("Where the event happens.")),
		mcp.WithString("address", mcp.Description("Street address of the location.")),
		mcp.WithBoolean("flagged", mcp.Description("Flagged events sort first.")),
	}
}

func withID(what string) mcp.ToolOption {
	return mcp.WithString("id",
		mcp.Required(),
		mcp.Description(fmt.Sprintf("%s identifier.", what)),
	)
}

func registerAddTaskTool(srv *server.MCPServer, svc *Service) {
	opts := append([]mcp.ToolOption{mcp.WithDescription("Create a task. Due defaults to now.")}, taskFields(true)...)
	tool := mcp.NewTool("add_task", opts...)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args TaskArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.AddTask(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerUpdateTaskTool(srv *server.MCPServer, svc *Service) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Update a task. Only the fields given change."),
		withID("Task"),
	}, taskFields(false)...)
	tool := mcp.NewTool("update_task", opts...)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var args TaskArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.UpdateTask(ctx, id, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerDeleteTaskTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_task",
		mcp.WithDescription("Delete a task, active or completed."),
		withID("Task"),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.DeleteTask(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"deleted": id})
	})
}

func registerCompleteTaskTool(srv *server.MCPServer, svc *Service, name string, done bool) {
	desc := "Mark a task as completed."
	if !done {
		desc = "Move a completed task back to the active list."
	}
	tool := mcp.NewTool(name, mcp.WithDescription(desc), withID("Task"))

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.SetTaskCompleted(ctx, id, done)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func optionalDate(svc *Service, request mcp.CallToolRequest) (*time.Time, error) {
	v := strings.TrimSpace(request.GetString("date", ""))
	if v == "" {
		return nil, nil
	}
	t, err := svc.ParseDate(v)
	if err != nil {
		return nil, fmt.Errorf("invalid date value: %w", err)
	}
	return &t, nil
}

func registerListTasksTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_tasks",
		mcp.WithDescription("List tasks, flagged first then by due time."),
		mcp.WithBoolean("completed", mcp.Description("List completed tasks instead of active ones.")),
		mcp.WithString("date", mcp.Description("Only tasks due on this day.")),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		on, err := optionalDate(svc, request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		tasks, err := svc.ListTasks(ctx, request.GetBool("completed", false), on)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"tasks": tasks, "count": len(tasks)})
	})
}

func registerAddEventTool(srv *server.MCPServer, svc *Service) {
	opts := append([]mcp.ToolOption{mcp.WithDescription("Create a calendar event.")}, eventFields(true)...)
	tool := mcp.NewTool("add_event", opts...)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args EventArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.AddEvent(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerUpdateEventTool(srv *server.MCPServer, svc *Service) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Update an event. Only the fields given change."),
		withID("Event"),
	}, eventFields(false)...)
	tool := mcp.NewTool("update_event", opts...)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var args EventArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.UpdateEvent(ctx, id, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerDeleteEventTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_event",
		mcp.WithDescription("Delete a calendar event."),
		withID("Event"),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.DeleteEvent(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"deleted": id})
	})
}

func registerListEventsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_events",
		mcp.WithDescription("List calendar events, flagged first then by time."),
		mcp.WithString("date", mcp.Description("Only events on this day, including ones that cross midnight into it.")),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		on, err := optionalDate(svc, request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		events, err := svc.ListEvents(ctx, on)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"events": events, "count": len(events)})
	})
}

func registerAddStudyPlaceTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"add_study_place",
		mcp.WithDescription("Save a study place. Give either a search query or coordinates."),
		mcp.WithString("name", mcp.Description("Place name. Required unless query is given.")),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Place type. Use other together with custom for anything else."),
			mcp.Enum(model.StudyPlaceTypes...),
		),
		mcp.WithString("custom", mcp.Description("Custom type, required when type is other.")),
		mcp.WithString("state", mcp.Description("State or region.")),
		mcp.WithString("country", mcp.Description("Country.")),
		mcp.WithNumber("latitude", mcp.Description("Latitude in degrees, -90 to 90.")),
		mcp.WithNumber("longitude", mcp.Description("Longitude in degrees, -180 to 180.")),
		mcp.WithString("query", mcp.Description("Free text location search; the best hit supplies the location.")),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			app.PlaceInput
			Query string `json:"query"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.AddStudyPlace(ctx, args.PlaceInput, args.Query)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerDeleteStudyPlaceTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_study_place",
		mcp.WithDescription("Delete a saved study place."),
		withID("Study place"),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.DeleteStudyPlace(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"deleted": id})
	})
}

func registerListStudyPlacesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_study_places",
		mcp.WithDescription("List saved study places by name."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := svc.ListStudyPlaces(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"places": list, "count": len(list)})
	})
}

func registerSearchPlacesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"search_places",
		mcp.WithDescription("Search for locations by free text. Nothing is saved."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Place name or address to look up."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		hits, err := svc.SearchPlaces(ctx, query)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"query": query, "candidates": hits, "count": len(hits)})
	})
}

func registerTodayTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"agenda_today",
		mcp.WithDescription("Active tasks due today and events happening today."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		items, err := svc.Today(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"items": items, "count": len(items)})
	})
}

func registerUpcomingTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"agenda_upcoming",
		mcp.WithDescription("Tasks and events in the days after today."),
		mcp.WithNumber("days", mcp.Description("How many days ahead to look. Defaults to 3.")),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		items, err := svc.Upcoming(ctx, request.GetInt("days", 0))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"items": items, "count": len(items)})
	})
}

func registerForDateTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"agenda_for_date",
		mcp.WithDescription("Every task and event on one calendar day."),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Day as 2006-01-02."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		v, err := request.RequireString("date")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		date, err := svc.ParseDate(v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid date value: %v", err)), nil
		}
		day, err := svc.Day(ctx, date)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(day)
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
