package perf

// TopicSampled is published after every persisted performance sample. The
// payload is the models.PerformanceSample that was stored.
const TopicSampled = "perf.sampled"
