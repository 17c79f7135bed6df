// Package fingerprint computes the content fingerprint used to decide whether a
// Current script has changed since it was last deployed.
//
// A fingerprint is the pair of an Adler-32 checksum (RFC 1950) and the byte length
// of a file. The checksum is computed by streaming the file in fixed blocks so large
// scripts never have to be held in memory.
//
// Example usage:
//
//	fp := fingerprint.Compute("Database/Current/Views/vw_orders.sql")
//	if fp.IsZero() {
//		// file is missing or unreadable
//	}
//
//	fmt.Printf("checksum=%d length=%d\n", fp.Checksum, fp.Length)
package fingerprint
