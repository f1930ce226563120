package store

// AddFeed subscribes a feed URL. Returns false when the URL is already
// subscribed.
func (db *DB) AddFeed(url string) (bool, error) {
	result, err := db.conn.Exec(
		"INSERT OR IGNORE INTO feeds (url) VALUES (?)", url,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RemoveFeed unsubscribes a feed URL. Returns false when the URL was not
// subscribed.
func (db *DB) RemoveFeed(url string) (bool, error) {
	result, err := db.conn.Exec("DELETE FROM feeds WHERE url = ?", url)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListFeeds returns all subscribed feeds in subscription order.
func (db *DB) ListFeeds() ([]Feed, error) {
	rows, err := db.conn.Query(
		"SELECT id, url, added_at FROM feeds ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		var f Feed
		if err := rows.Scan(&f.ID, &f.URL, &f.AddedAt); err != nil {
			return nil, err
		}
		feeds = append(feeds, f)
	}
	return feeds, rows.Err()
}

// FeedURLs returns the subscribed feed URLs in subscription order.
func (db *DB) FeedURLs() ([]string, error) {
	feeds, err := db.ListFeeds()
	if err != nil {
		return nil, err
	}
	urls := make([]string, len(feeds))
	for i, f := range feeds {
		urls[i] = f.URL
	}
	return urls, nil
}
