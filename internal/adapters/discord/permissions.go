package discord

import "github.com/bwmarrin/discordgo"

const permAll int64 = -1

// memberPermissions: owner y Administrator tienen todo; si no, OR de los
// permisos de @everyone y de cada rol del miembro.
func memberPermissions(s *discordgo.Session, guildID, userID string, roleIDs []string) int64 {
	if s == nil {
		return 0
	}
	if g, _ := s.State.Guild(guildID); g != nil && g.OwnerID == userID {
		return permAll
	}

	roles := guildRoles(s, guildID)
	has := make(map[string]struct{}, len(roleIDs)+1)
	has[guildID] = struct{}{} // @everyone comparte id con la guild
	for _, rid := range roleIDs {
		has[rid] = struct{}{}
	}
	var perms int64
	for _, ro := range roles {
		if _, ok := has[ro.ID]; ok {
			perms |= ro.Permissions
		}
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return permAll
	}
	return perms
}

func guildRoles(s *discordgo.Session, guildID string) []*discordgo.Role {
	if g, err := s.State.Guild(guildID); err == nil && g != nil && len(g.Roles) > 0 {
		return g.Roles
	}
	roles, _ := s.GuildRoles(guildID)
	return roles
}
