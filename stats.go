package hattrie

// Stats reports per-instance instrumentation counters. They live on the
// [Hat] rather than as package-level globals, since multiple Hat values
// may be open concurrently on independent goroutines; this also makes
// promotion and bursting behavior directly observable by a caller instead
// of requiring white-box test hooks.
type Stats struct {
	// Searches counts completed Find descents that reached an Array node.
	Searches uint64
	// Probes counts individual record comparisons made while scanning an
	// Array node.
	Probes uint64
	// RadixSteps counts Find descents through a Radix node.
	RadixSteps uint64
	// BucketSteps counts Find descents through a Bucket node.
	BucketSteps uint64
	// PailSteps counts Find descents through a Pail node.
	PailSteps uint64
	// ArrayPromotions counts Array nodes promoted to a larger size class.
	ArrayPromotions uint64
	// ArrayToPail counts Array nodes converted into a Pail node.
	ArrayToPail uint64
	// ArrayBursts counts Array nodes burst directly into a Bucket node.
	ArrayBursts uint64
	// PailBursts counts Pail nodes burst into a Bucket node.
	PailBursts uint64
	// BucketBursts counts Bucket nodes burst into a Radix node.
	BucketBursts uint64
}
