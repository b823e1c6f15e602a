package app

import (
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-shopadmin/command"
	"github.com/goliatone/go-shopadmin/export"
	"github.com/goliatone/go-shopadmin/query"
)

// RegisterHandlers subscribes catalog commands and queries on the go-command
// dispatcher.
func RegisterHandlers(workspaces command.RegistryWorkspaces, formats []export.Format) ([]dispatcher.Subscription, error) {
	if workspaces == nil {
		return nil, errors.New("workspaces are required", errors.CategoryValidation).
			WithTextCode("WORKSPACES_REQUIRED")
	}

	load := command.NewLoadCatalogHandler(workspaces)
	runExport := command.NewRunExportHandler(workspaces)
	bulkDelete := command.NewBulkDeleteHandler(workspaces)
	remoteSearch := command.NewRemoteSearchHandler(workspaces)
	recordSearch := command.NewRecordSearchHandler(workspaces)
	clearHistory := command.NewClearHistoryHandler(workspaces)
	saveSettings := command.NewSaveSettingsHandler(workspaces)
	clearFilters := command.NewClearSavedFiltersHandler(workspaces)
	cards := command.NewSetCardsPerRowHandler(workspaces)

	list := query.NewListRecordsHandler(workspaces)
	suggestions := query.NewSuggestionsHandler(workspaces)
	history := query.NewSearchHistoryHandler(workspaces)
	settings := query.NewGetSettingsHandler(workspaces)
	saved := query.NewGetSavedFiltersHandler(workspaces)
	schema := query.NewDescribeSchemaHandler(workspaces, formats)
	remoteStatus := query.NewRemoteStatusHandler(workspaces)

	return []dispatcher.Subscription{
		dispatcher.SubscribeCommand(load),
		dispatcher.SubscribeCommand(runExport),
		dispatcher.SubscribeCommand(bulkDelete),
		dispatcher.SubscribeCommand(remoteSearch),
		dispatcher.SubscribeCommand(recordSearch),
		dispatcher.SubscribeCommand(clearHistory),
		dispatcher.SubscribeCommand(saveSettings),
		dispatcher.SubscribeCommand(clearFilters),
		dispatcher.SubscribeCommand(cards),
		dispatcher.SubscribeQuery(list),
		dispatcher.SubscribeQuery(suggestions),
		dispatcher.SubscribeQuery(history),
		dispatcher.SubscribeQuery(settings),
		dispatcher.SubscribeQuery(saved),
		dispatcher.SubscribeQuery(schema),
		dispatcher.SubscribeQuery(remoteStatus),
	}, nil
}

// Unsubscribe removes every subscription.
func Unsubscribe(subscriptions []dispatcher.Subscription) {
	for _, sub := range subscriptions {
		sub.Unsubscribe()
	}
}
