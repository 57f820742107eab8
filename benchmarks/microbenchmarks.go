package benchmarks

// GetMicrobenchmarks returns the standard set of microbenchmarks. Each one
// leaves a known value in r1 and targets one kind of instruction mix.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticLoop(),
		dependencyChain(),
		memorySequential(),
		branchHeavy(),
		functionCalls(),
		mixedWorkload(),
	}
}

// GetCoreBenchmarks returns a minimal set for quick validation.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticLoop(),
		memorySequential(),
		branchHeavy(),
	}
}

// 1. Arithmetic Loop - independent ALU operations around one backward branch
func arithmeticLoop() Benchmark {
	return Benchmark{
		Name:        "arithmetic_loop",
		Description: "100 iterations of 4 independent ALU ops - measures ALU throughput",
		Source: `
        li   r2, 100
        li   r1, 0
loop:   addi r1, r1, 3
        addi r3, r3, 1
        xori r4, r4, 5
        addi r2, r2, -1
        jne  r2, loop
        halt
`,
		ExpectedExit: 300,
	}
}

// 2. Dependency Chain - every instruction reads the previous result
func dependencyChain() Benchmark {
	return Benchmark{
		Name:        "dependency_chain",
		Description: "50 iterations of 4 dependent ADDs - measures serial latency",
		Source: `
        li   r2, 50
        li   r1, 0
loop:   addi r1, r1, 1
        addi r1, r1, 1
        addi r1, r1, 1
        addi r1, r1, 1
        addi r2, r2, -1
        jne  r2, loop
        halt
`,
		ExpectedExit: 200,
	}
}

// 3. Memory Sequential - store/load pairs walking a 256-byte array
func memorySequential() Benchmark {
	return Benchmark{
		Name:        "memory_sequential",
		Description: "64 store/load pairs to sequential words - measures cache locality",
		Source: `
        .equ SLOT, 3 << 11            # st r3, CHECK(r5) writes at SLOT(r5)
        .equ CHECK, 5 * 64 + 3 * 2 + 2
        li   r5, 0x10000
        li   r2, 64
        li   r1, 0
        li   r3, 7
loop:   st   r3, CHECK(r5)
        ld   r4, SLOT(r5)
        add  r1, r1, r4
        addi r3, r3, 1
        addi r5, r5, 4
        addi r2, r2, -1
        jne  r2, loop
        halt
`,
		ExpectedExit: 2464, // 7 + 8 + ... + 70
	}
}

// 4. Branch Heavy - a data-dependent forward branch every iteration
func branchHeavy() Benchmark {
	return Benchmark{
		Name:        "branch_heavy",
		Description: "100 iterations alternating taken/not-taken branches - counts odd values",
		Source: `
        li   r2, 100
        li   r1, 0
loop:   andi r3, r2, 1
        jeq  r3, even
        addi r1, r1, 1
even:   addi r2, r2, -1
        jgt  r2, loop
        halt
`,
		ExpectedExit: 50,
	}
}

// 5. Function Calls - JL/JR pairs
func functionCalls() Benchmark {
	return Benchmark{
		Name:        "function_calls",
		Description: "20 calls to a leaf function - measures call/return overhead",
		Source: `
        li   r2, 20
        li   r1, 0
loop:   jl   r31, bump
        addi r2, r2, -1
        jne  r2, loop
        halt
bump:   addi r1, r1, 2
        jr   r29, r31
`,
		ExpectedExit: 40,
	}
}

// 6. Mixed Workload - multiply, memory and a conditional adjustment
func mixedWorkload() Benchmark {
	return Benchmark{
		Name:        "mixed_workload",
		Description: "Sum of i*i for i=1..32, minus 100 per square above 100",
		Source: `
        .equ SLOT, 3 << 11
        .equ CHECK, 5 * 64 + 3 * 2 + 2
        li   r5, 0x20000
        li   r2, 32
        li   r1, 0
loop:   mul  r3, r2, r2
        st   r3, CHECK(r5)
        ld   r4, SLOT(r5)
        cgti r6, r4, 100
        jeq  r6, small
        addi r4, r4, -100
small:  add  r1, r1, r4
        addi r5, r5, 4
        addi r2, r2, -1
        jne  r2, loop
        halt
`,
		ExpectedExit: 9240,
	}
}
