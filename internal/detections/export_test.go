package detections

// CloseConn closes the connection a Batch holds, as a dropped server connection would.
func CloseConn(b *Batch) error {
	return b.conn.Close()
}
