package team

// Action is a direct-endpoint operation gated by the capability matrix.
// The sync path never consults the matrix: a member syncing acts with
// full team authority.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Can evaluates the capability matrix for sites and personas:
//
//	              owner admin editor viewer
//	view            ✓     ✓     ✓      ✓
//	create          ✓     ✓     ✓      ✗
//	update          ✓     ✓     ✓      ✗
//	delete          ✓     ✓     ✗      ✗
//
// Script update/delete carry an extra authorship rule, see CanTouchScript.
func Can(role Role, action Action) bool {
	switch role {
	case RoleOwner, RoleAdmin:
		return true
	case RoleEditor:
		return action != ActionDelete
	case RoleViewer:
		return action == ActionView
	default:
		return false
	}
}

// CanTouchScript gates update and delete on scripts. Editors may only
// destructively change scripts they personally authored; shared taxonomy
// (sites, personas) stays freely editable for them through Can.
func CanTouchScript(role Role, authorID, userID int64) bool {
	switch role {
	case RoleOwner, RoleAdmin:
		return true
	case RoleEditor:
		return authorID == userID
	default:
		return false
	}
}
