package constants

const (
	InsertLoginEvent = `
	INSERT INTO login_history (id, username, name, role, logged_in_at)
	VALUES (:id, :username, :name, :role, :logged_in_at)
	`

	ListRecentLogins = `
	SELECT id, username, name, role, logged_in_at
	FROM login_history
	ORDER BY logged_in_at DESC
	LIMIT ?
	`

	TrimLoginHistory = `
	DELETE FROM login_history
	WHERE id NOT IN (
		SELECT id FROM login_history ORDER BY logged_in_at DESC LIMIT ?
	)
	`
)
