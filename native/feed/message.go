package feed

import "github.com/ethereum/go-ethereum/common"

// Message is a single posted record: a main chat message, a reply or a
// comment. Deletion is a soft flag so moderators can restore records.
type Message struct {
	ID        uint64
	Author    common.Address
	URL       string
	CreatedAt int64
	Deleted   bool
}

// page applies soft-delete filtering and pagination to a record list.
// Offsets past the end yield an empty page; the limit clamps to what remains.
func page(records []*Message, includeDeleted bool, offset, limit int) []Message {
	visible := filter(records, includeDeleted)
	if offset < 0 {
		offset = 0
	}
	if offset >= len(visible) {
		return []Message{}
	}
	end := len(visible)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]Message, 0, end-offset)
	for _, m := range visible[offset:end] {
		out = append(out, *m)
	}
	return out
}

// lastPage returns the newest count visible records, oldest first.
func lastPage(records []*Message, includeDeleted bool, count int) []Message {
	visible := filter(records, includeDeleted)
	if count < 0 {
		count = 0
	}
	start := len(visible) - count
	if start < 0 {
		start = 0
	}
	out := make([]Message, 0, len(visible)-start)
	for _, m := range visible[start:] {
		out = append(out, *m)
	}
	return out
}

func filter(records []*Message, includeDeleted bool) []*Message {
	if includeDeleted {
		return records
	}
	visible := make([]*Message, 0, len(records))
	for _, m := range records {
		if !m.Deleted {
			visible = append(visible, m)
		}
	}
	return visible
}

func count(records []*Message, includeDeleted bool) int {
	return len(filter(records, includeDeleted))
}
