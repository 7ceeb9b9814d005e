package main

import (
	"log"
	"os"

	"github.com/simplevm/simplevm/svmgo/hostcall"
	"github.com/simplevm/simplevm/svmgo/vm"
)

const memorySize = 200

func main() {
	for _, path := range os.Args[1:] {
		code, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("failed to read bytecode %q: %v", path, err)
		}
		m, err := vm.New(code, memorySize, vm.WithStdout(os.Stdout), vm.WithStderr(os.Stderr))
		if err != nil {
			log.Fatalf("failed to create VM for %q: %v", path, err)
		}
		hostcall.Install(m, hostcall.SyscallOpcode)
		if err := m.Run(); err != nil {
			log.Fatalf("failed to run %q: %v", path, err)
		}
		log.Printf("%s halted at ip %d after %d steps", path, m.IP(), m.State().Step)
		if err := m.Release(); err != nil {
			log.Fatalf("failed to release VM: %v", err)
		}
	}
}
