package store

import "context"

// QueryInChunks executes a membership query over an arbitrarily long id
// list by splitting it into chunks of at most MembershipLimit values and
// issuing one query per chunk. Results are concatenated unordered; chunk
// completion order carries no meaning. An empty id list issues no query.
// The first failing chunk aborts the call and its error is returned.
func QueryInChunks(ctx context.Context, s Store, collection, field string, ids []string) ([]Document, error) {
	if len(ids) == 0 {
		return []Document{}, nil
	}

	var merged []Document
	for start := 0; start < len(ids); start += MembershipLimit {
		end := start + MembershipLimit
		if end > len(ids) {
			end = len(ids)
		}

		docs, err := s.QueryByMembership(ctx, collection, field, ids[start:end])
		if err != nil {
			return nil, err
		}
		merged = append(merged, docs...)
	}

	return merged, nil
}
