package service

import (
	"context"
	"fmt"
)

// checkUpdatesPageBudget bounds the campaign-wide scan; campaigns
// bigger than this report the overflow ids as deleted, which callers
// treat as "re-fetch".
const checkUpdatesPageBudget = 20

// CheckUpdatesResult partitions the requested ids into modified since
// the sync point and no longer present.
type CheckUpdatesResult struct {
	ModifiedEntityIDs []int  `json:"modified_entity_ids"`
	DeletedEntityIDs  []int  `json:"deleted_entity_ids"`
	CheckTimestamp    string `json:"check_timestamp"`
}

// CheckEntityUpdates reports which of the given entity ids changed
// after lastSynced and which disappeared. One campaign-wide listing
// serves every id, instead of a lookup per id.
func (s *Service) CheckEntityUpdates(ctx context.Context, entityIDs []int, lastSynced string) (*CheckUpdatesResult, error) {
	if lastSynced == "" {
		return nil, fmt.Errorf("last_synced is required")
	}

	known := make(map[int]string)
	page := 1
	for page <= checkUpdatesPageBudget {
		records, hasMore, err := s.api.ListEntityRecords(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("checking entity updates: %w", err)
		}
		for _, record := range records {
			known[record.ID] = record.UpdatedAt
		}
		if !hasMore || len(records) == 0 {
			break
		}
		page++
	}

	result := &CheckUpdatesResult{
		ModifiedEntityIDs: []int{},
		DeletedEntityIDs:  []int{},
		CheckTimestamp:    nowTimestamp(),
	}
	for _, entityID := range entityIDs {
		updatedAt, ok := known[entityID]
		if !ok {
			result.DeletedEntityIDs = append(result.DeletedEntityIDs, entityID)
			continue
		}
		// ISO 8601 timestamps compare correctly as strings.
		if updatedAt > lastSynced {
			result.ModifiedEntityIDs = append(result.ModifiedEntityIDs, entityID)
		}
	}
	return result, nil
}
