package database

import (
	"fmt"
	"testing"

	"flashback-app/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRow feeds canned column values through the pgx.Row interface.
// A nil value maps to a SQL NULL for pointer destinations.
type fakeRow struct {
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) != len(r.values) {
		return fmt.Errorf("expected %d destinations, got %d", len(r.values), len(dest))
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *int:
			*d = v.(int)
		case *string:
			*d = v.(string)
		case *models.EventMemberRole:
			*d = v.(models.EventMemberRole)
		case **int:
			if v != nil {
				n := v.(int)
				*d = &n
			}
		case **string:
			if v != nil {
				s := v.(string)
				*d = &s
			}
		default:
			return fmt.Errorf("unsupported destination type %T", d)
		}
	}
	return nil
}

func TestScanEventMemberWithAddedBy(t *testing.T) {
	member, err := scanEventMember(fakeRow{values: []any{
		1, 9, models.RoleGuest,
		3, "ada", "ada@example.com", "", "",
		5, "bob", "bob@example.com", "", "",
	}})
	require.NoError(t, err)

	assert.Equal(t, 1, member.ID)
	assert.Equal(t, 9, member.EventID)
	assert.Equal(t, models.RoleGuest, member.Role)
	assert.Equal(t, 3, member.User.ID)
	require.NotNil(t, member.AddedBy)
	assert.Equal(t, 5, member.AddedBy.ID)
	assert.Equal(t, "bob", member.AddedBy.Username)
}

func TestScanEventMemberHostHasNoAddedBy(t *testing.T) {
	member, err := scanEventMember(fakeRow{values: []any{
		1, 9, models.RoleHost,
		5, "bob", "bob@example.com", "", "",
		nil, nil, nil, nil, nil,
	}})
	require.NoError(t, err)

	assert.Equal(t, models.RoleHost, member.Role)
	assert.Equal(t, 5, member.User.ID)
	assert.Nil(t, member.AddedBy)
}
