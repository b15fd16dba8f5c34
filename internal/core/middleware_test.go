package core

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gatedCommand struct {
	perms []int64
	runs  int
}

func (c *gatedCommand) Name() string        { return "gated" }
func (c *gatedCommand) Description() string { return "test command" }
func (c *gatedCommand) Group() string       { return "test" }
func (c *gatedCommand) Category() string    { return "test" }

func (c *gatedCommand) UserPermissions() []int64 { return c.perms }
func (c *gatedCommand) Run(ctx interface{}) error {
	c.runs++
	return nil
}

// replyRecorder captures the REST calls a middleware makes when it rejects
// an interaction, so tests never reach Discord.
type replyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (r *replyRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	var body string
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		body = string(raw)
	}
	r.mu.Lock()
	r.bodies = append(r.bodies, body)
	r.mu.Unlock()

	return &http.Response{
		StatusCode: http.StatusNoContent,
		Body:       io.NopCloser(strings.NewReader("")),
		Header:     make(http.Header),
	}, nil
}

func (r *replyRecorder) replies() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.bodies...)
}

func newGateSession(rec *replyRecorder) *discordgo.Session {
	return &discordgo.Session{
		State:       discordgo.NewState(),
		Ratelimiter: discordgo.NewRatelimiter(),
		Client:      &http.Client{Transport: rec},
		UserAgent:   "test",
	}
}

// addGuildFixture seeds the session state with one guild, one text channel
// and one member whose roles grant memberPerms.
func addGuildFixture(t *testing.T, s *discordgo.Session, ownerID string, memberPerms int64) {
	t.Helper()
	err := s.State.GuildAdd(&discordgo.Guild{
		ID:      "g1",
		OwnerID: ownerID,
		Roles: []*discordgo.Role{
			{ID: "g1", Permissions: 0},
			{ID: "dj", Permissions: memberPerms},
		},
		Channels: []*discordgo.Channel{
			{ID: "c1", GuildID: "g1", Type: discordgo.ChannelTypeGuildText},
		},
		Members: []*discordgo.Member{
			{GuildID: "g1", User: &discordgo.User{ID: "u1"}, Roles: []string{"dj"}},
		},
	})
	require.NoError(t, err)
}

func guildInteraction() *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "i1",
		Token:     "tok",
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "g1",
		ChannelID: "c1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "u1"}},
	}}
}

func dmInteraction() *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "i1",
		Token:     "tok",
		Type:      discordgo.InteractionApplicationCommand,
		ChannelID: "dm1",
		User:      &discordgo.User{ID: "u1"},
	}}
}

func TestGuildOnlyRejectsDirectMessages(t *testing.T) {
	rec := &replyRecorder{}
	cmd := &gatedCommand{}
	wrapped := ApplyMiddlewares(cmd, WithGuildOnly())

	err := wrapped.Run(&SlashInteractionContext{Session: newGateSession(rec), Event: dmInteraction()})
	require.NoError(t, err)

	assert.Zero(t, cmd.runs)
	replies := rec.replies()
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "only works inside a server")
}

func TestGuildOnlyPassesGuildInteractions(t *testing.T) {
	rec := &replyRecorder{}
	cmd := &gatedCommand{}
	wrapped := ApplyMiddlewares(cmd, WithGuildOnly())

	err := wrapped.Run(&SlashInteractionContext{Session: newGateSession(rec), Event: guildInteraction()})
	require.NoError(t, err)

	assert.Equal(t, 1, cmd.runs)
	assert.Empty(t, rec.replies())
}

func TestPermissionCheckOpenCommandAlwaysRuns(t *testing.T) {
	rec := &replyRecorder{}
	cmd := &gatedCommand{}
	wrapped := ApplyMiddlewares(cmd, WithUserPermissionCheck())

	s := newGateSession(rec)
	addGuildFixture(t, s, "owner", 0)

	require.NoError(t, wrapped.Run(&SlashInteractionContext{Session: s, Event: guildInteraction()}))
	assert.Equal(t, 1, cmd.runs)
	assert.Empty(t, rec.replies())
}

func TestPermissionCheckAnyOfMatching(t *testing.T) {
	rec := &replyRecorder{}
	cmd := &gatedCommand{perms: []int64{discordgo.PermissionManageServer, discordgo.PermissionBanMembers}}
	wrapped := ApplyMiddlewares(cmd, WithUserPermissionCheck())

	s := newGateSession(rec)
	addGuildFixture(t, s, "owner", discordgo.PermissionBanMembers)

	require.NoError(t, wrapped.Run(&SlashInteractionContext{Session: s, Event: guildInteraction()}))
	assert.Equal(t, 1, cmd.runs)
	assert.Empty(t, rec.replies())
}

func TestPermissionCheckAdministratorBypass(t *testing.T) {
	rec := &replyRecorder{}
	cmd := &gatedCommand{perms: []int64{discordgo.PermissionManageServer}}
	wrapped := ApplyMiddlewares(cmd, WithUserPermissionCheck())

	s := newGateSession(rec)
	addGuildFixture(t, s, "owner", discordgo.PermissionAdministrator)

	require.NoError(t, wrapped.Run(&SlashInteractionContext{Session: s, Event: guildInteraction()}))
	assert.Equal(t, 1, cmd.runs)
	assert.Empty(t, rec.replies())
}

func TestPermissionCheckGuildOwnerBypass(t *testing.T) {
	rec := &replyRecorder{}
	cmd := &gatedCommand{perms: []int64{discordgo.PermissionManageServer}}
	wrapped := ApplyMiddlewares(cmd, WithUserPermissionCheck())

	s := newGateSession(rec)
	addGuildFixture(t, s, "u1", 0)

	require.NoError(t, wrapped.Run(&SlashInteractionContext{Session: s, Event: guildInteraction()}))
	assert.Equal(t, 1, cmd.runs)
	assert.Empty(t, rec.replies())
}

func TestPermissionCheckDeniesAndNamesPermissions(t *testing.T) {
	rec := &replyRecorder{}
	cmd := &gatedCommand{perms: []int64{discordgo.PermissionManageServer}}
	wrapped := ApplyMiddlewares(cmd, WithUserPermissionCheck())

	s := newGateSession(rec)
	addGuildFixture(t, s, "owner", 0)

	require.NoError(t, wrapped.Run(&SlashInteractionContext{Session: s, Event: guildInteraction()}))

	assert.Zero(t, cmd.runs)
	replies := rec.replies()
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Manage Server")
}
