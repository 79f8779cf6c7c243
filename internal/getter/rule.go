package getter

// RuleContext carries the parts of a rule that influence evaluation.
type RuleContext struct {
	// Name of the rule; also the default managed collection name.
	Name string
	// ManualCollection is set when the rule writes to a collection other
	// than the one named after itself.
	ManualCollection bool
	// ManualCollectionName is the name of that collection.
	ManualCollectionName string
}

// ManagedCollection returns the collection the rule maintains.
func (rc *RuleContext) ManagedCollection() string {
	if rc.ManualCollection && rc.ManualCollectionName != "" {
		return rc.ManualCollectionName
	}
	return rc.Name
}
