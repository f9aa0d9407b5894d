package inject

// Reset drops cached descriptors between tests.
var Reset = reset
