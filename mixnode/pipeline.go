package mixnode

import (
	"net"
	"sync"

	"github.com/fogcompute/platform/delay"
)

// Pipeline wires an Ingress, Node, egress transmitter, and optional cover
// traffic generator into the full mixnode hop described by spec §4.5.
type Pipeline struct {
	ingress *Ingress
	node    *Node
	egress  *BatchingEgress
	sched   *delay.Scheduler
	cover   *delay.CoverGenerator // may be nil

	workers int

	quit chan struct{}
	wg   sync.WaitGroup
}

// NewPipeline constructs a Pipeline. cover may be nil to disable cover
// traffic.
func NewPipeline(ingress *Ingress, node *Node, egress *BatchingEgress,
	sched *delay.Scheduler, cover *delay.CoverGenerator, workers int) *Pipeline {

	if workers <= 0 {
		workers = 1
	}

	return &Pipeline{
		ingress: ingress,
		node:    node,
		egress:  egress,
		sched:   sched,
		cover:   cover,
		workers: workers,
		quit:    make(chan struct{}),
	}
}

// ListenAndServe starts accepting carrier connections on listener and
// begins processing, releasing, and (if configured) generating cover
// traffic.
func (p *Pipeline) ListenAndServe(listener net.Listener) {
	p.egress.Start()
	p.sched.Start()
	if p.cover != nil {
		p.cover.Start()
	}

	p.ingress.Serve(listener)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pipeline) worker() {
	defer p.wg.Done()

	for {
		select {
		case frame, ok := <-p.ingress.Frames():
			if !ok {
				return
			}
			p.node.HandleFrame(frame)

		case <-p.quit:
			return
		}
	}
}

// Stop shuts down ingress, then the frame workers, then the cover generator,
// scheduler and egress.
func (p *Pipeline) Stop() {
	p.ingress.Stop()
	close(p.quit)
	p.wg.Wait()

	if p.cover != nil {
		p.cover.Stop()
	}
	p.sched.Stop()
	p.egress.Stop()
}
