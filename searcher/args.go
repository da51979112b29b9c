package searcher

// Hyperparameters for MCTS

const DefaultPUCT = 1.25 // Exploration constant
const Epsilon = 1e-8     // Keeps sqrt(N0) and calc_policy denominators away from zero
const DepthBound = 30    // Deeper policies collapse to their argmax
const BatchSize = 16     // Pending states per batch predict call

// Dirichlet exploration noise mixed into priors at expansion
const DirichletAlpha = 0.3
const NoiseWeight = 0.25

// ActionSpace bounds action ids: bitmasks over at most 7 hand slots
const ActionSpace = 128

const NoAction = -1      // Returned by Search for terminal states
const FallbackAction = 0 // One-hot target when a distribution sums to zero
