package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestItemKindTable(t *testing.T) {
	table, ok := ItemKindTask.Table()
	assert.True(t, ok)
	assert.Equal(t, "meeting_tasks", table)

	table, ok = ItemKindCommitment.Table()
	assert.True(t, ok)
	assert.Equal(t, "meeting_commitments", table)

	_, ok = ItemKind("agreement").Table()
	assert.False(t, ok)
}

func TestTrackStatus(t *testing.T) {
	assert.True(t, TrackStatusOverdue.Valid())
	assert.False(t, TrackStatus("done").Valid())
	assert.True(t, TrackStatusCompleted.Terminal())
	assert.True(t, TrackStatusCancelled.Terminal())
	assert.False(t, TrackStatusOverdue.Terminal())
}

func TestTrackableItemImplementations(t *testing.T) {
	items := []TrackableItem{
		&Task{UUIDModel: UUIDModel{ID: "t1"}, MeetingID: "m1", TaskTitle: "Prepare agenda"},
		&Commitment{UUIDModel: UUIDModel{ID: "c1"}, MeetingID: "m1", CommitmentText: "Share minutes"},
	}

	assert.Equal(t, ItemKindTask, items[0].Kind())
	assert.Equal(t, "Prepare agenda", items[0].Heading())
	assert.Equal(t, ItemKindCommitment, items[1].Kind())
	assert.Equal(t, "c1", items[1].ItemID())

	items[1].Tracking().Status = TrackStatusInProgress
	assert.Equal(t, TrackStatusInProgress, items[1].(*Commitment).Status)
}

func TestGroupMembers(t *testing.T) {
	g := Group{ID: "g1", Members: []GroupMember{{ID: "u1"}, {ID: "u2"}, {ID: "u1"}, {ID: ""}}}

	assert.True(t, g.HasMember("u2"))
	assert.False(t, g.HasMember("u3"))
	assert.Equal(t, []string{"u1", "u2"}, g.MemberIDs())
}

func TestSimpleMeetingRoundTrip(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&SimpleMeeting{}))

	meeting := Meeting{WorkspaceID: "w1", Title: "Kickoff", MeetingDate: time.Now().UTC(), CreatedBy: "u1"}
	row := NewSimpleMeeting(meeting, MeetingData{
		Agreements: []Agreement{{AgreementText: "Meet weekly", OrderIndex: 0}},
		Tasks:      []Task{{TaskTitle: "Book room", Priority: PriorityHigh}},
	})
	require.NoError(t, db.Create(row).Error)
	_, err = uuid.Parse(row.ID)
	require.NoError(t, err)

	var loaded SimpleMeeting
	require.NoError(t, db.First(&loaded, "id = ?", row.ID).Error)
	assert.Len(t, loaded.MeetingData.Agreements, 1)
	assert.Equal(t, "Book room", loaded.MeetingData.Tasks[0].TaskTitle)

	m := loaded.AsMeeting()
	assert.Equal(t, row.ID, m.ID)
	assert.Equal(t, "Kickoff", m.Title)
	assert.True(t, m.IsActive)
}
