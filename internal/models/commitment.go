package models

type Commitment struct {
	UUIDModel
	MeetingID      string `gorm:"type:varchar(36);not null;index" json:"meeting_id"`
	CommitmentText string `gorm:"type:text;not null" json:"commitment_text"`
	Trackable
}

func (Commitment) TableName() string {
	return "meeting_commitments"
}

func (c *Commitment) Kind() ItemKind        { return ItemKindCommitment }
func (c *Commitment) ItemID() string        { return c.ID }
func (c *Commitment) ItemMeetingID() string { return c.MeetingID }
func (c *Commitment) Heading() string       { return c.CommitmentText }
func (c *Commitment) Tracking() *Trackable  { return &c.Trackable }
